package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

func TestEventListFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewEventStore(db)
	u := seedUser(t, db, "a@example.com")
	f := seedFamily(t, db, u.ID, "Smiths")
	other := seedFamily(t, db, u.ID, "Joneses")
	cal := seedCalendar(t, db, f.ID, "School")
	otherCal := seedCalendar(t, db, other.ID, "Work")

	march := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	seedEvent(t, db, u.ID, f.ID, cal.ID, "April", april)
	e := seedEvent(t, db, u.ID, f.ID, cal.ID, "March", march)
	seedEvent(t, db, u.ID, other.ID, otherCal.ID, "Elsewhere", march)

	if _, err := s.Update(ctx, u.ID, e.ID, EventUpdate{Completed: mo.Some(true)}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	yes, no := true, false
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter model.EventFilter
		want   []string
	}{
		{"all", model.EventFilter{}, []string{"March", "Elsewhere", "April"}},
		{"family", model.EventFilter{FamilyID: f.ID}, []string{"March", "April"}},
		{"range", model.EventFilter{FamilyID: f.ID, StartDate: &start, EndDate: &end}, []string{"March"}},
		{"start only is ignored", model.EventFilter{FamilyID: f.ID, StartDate: &start}, []string{"March", "April"}},
		{"completed", model.EventFilter{Completed: &yes}, []string{"March"}},
		{"not completed", model.EventFilter{FamilyID: f.ID, Completed: &no}, []string{"April"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.List(ctx, u.ID, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := map[string]bool{}
			for _, e := range events {
				got[e.Title] = true
			}
			if len(events) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(events), len(tt.want))
			}
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("missing event %q", w)
				}
			}
		})
	}
}

func TestEventViewShape(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewEventStore(db)
	u := seedUser(t, db, "a@example.com")
	f := seedFamily(t, db, u.ID, "Smiths")
	cal := seedCalendar(t, db, f.ID, "School")
	loc, err := NewLocationStore(db).Create(ctx, f.ID, LocationInput{Label: "Gym", Address: strPtr("1 Main St")})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	v, err := s.Create(ctx, u.ID, EventInput{
		Title:      "Practice",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		FamilyID:   f.ID,
		CalendarID: cal.ID,
		LocationID: &loc.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.Family.Name != "Smiths" || v.Calendar.Name != "School" {
		t.Errorf("refs = %+v %+v", v.Family, v.Calendar)
	}
	if v.Location == nil || v.Location.Label != "Gym" {
		t.Fatalf("location = %+v, want Gym", v.Location)
	}
	if !v.StartTime.Equal(start) {
		t.Errorf("start = %v, want %v", v.StartTime, start)
	}

	d, err := s.Update(ctx, u.ID, v.ID, EventUpdate{LocationID: mo.Some[*string](nil)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.Location != nil {
		t.Errorf("location = %+v, want cleared", d.Location)
	}
	if d.Reminders == nil || d.Notifications == nil {
		t.Error("detail collections should be non-nil")
	}
}

func TestEventOwnership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewEventStore(db)
	u := seedUser(t, db, "a@example.com")
	stranger := seedUser(t, db, "b@example.com")
	f := seedFamily(t, db, u.ID, "Smiths")
	cal := seedCalendar(t, db, f.ID, "School")
	e := seedEvent(t, db, u.ID, f.ID, cal.ID, "Recital", time.Now())

	got, err := s.Get(ctx, stranger.ID, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("stranger must not see the event")
	}
	ok, err := s.Delete(ctx, stranger.ID, e.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("stranger must not delete the event")
	}
	ok, err = s.Delete(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("owner delete should succeed")
	}
}
