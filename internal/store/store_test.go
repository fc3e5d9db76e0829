package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *database.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), email, "Test User")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedFamily(t *testing.T, db *database.DB, userID, name string) *model.FamilySummary {
	t.Helper()
	f, err := NewFamilyStore(db).Create(context.Background(), userID, name)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return f
}

func seedCalendar(t *testing.T, db *database.DB, familyID, name string) *model.CalendarSummary {
	t.Helper()
	c, err := NewCalendarStore(db).Create(context.Background(), familyID, name, nil)
	if err != nil {
		t.Fatalf("create calendar: %v", err)
	}
	return c
}

func seedEvent(t *testing.T, db *database.DB, userID, familyID, calendarID, title string, start time.Time) *model.EventView {
	t.Helper()
	e, err := NewEventStore(db).Create(context.Background(), userID, EventInput{
		Title:      title,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		FamilyID:   familyID,
		CalendarID: calendarID,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func seedTask(t *testing.T, db *database.DB, userID, familyID, title string) *model.TaskView {
	t.Helper()
	task, err := NewTaskStore(db).Create(context.Background(), userID, TaskInput{Title: title, FamilyID: familyID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func strPtr(s string) *string { return &s }
