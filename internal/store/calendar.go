package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

type CalendarStore struct {
	db *database.DB
}

func NewCalendarStore(db *database.DB) *CalendarStore {
	return &CalendarStore{db: db}
}

// CalendarUpdate holds the fields of a partial update. Color Some(nil) clears it.
type CalendarUpdate struct {
	Name  mo.Option[string]
	Color mo.Option[*string]
}

const calendarCols = `c.id, c.name, c.color, c.family_id, c.created_at, c.updated_at`

const calendarEventCount = `(SELECT COUNT(*) FROM events ev WHERE ev.calendar_id = c.id)`

func scanCalendar(scanner interface{ Scan(...any) error }) (*model.Calendar, error) {
	var c model.Calendar
	if err := scanner.Scan(&c.ID, &c.Name, &c.Color, &c.FamilyID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCalendarSummary(scanner interface{ Scan(...any) error }) (*model.CalendarSummary, error) {
	var c model.CalendarSummary
	err := scanner.Scan(&c.ID, &c.Name, &c.Color, &c.FamilyID, &c.CreatedAt, &c.UpdatedAt, &c.Count.Events)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the calendars of a family, by name.
func (s *CalendarStore) List(ctx context.Context, familyID string) ([]model.CalendarSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+calendarCols+`, `+calendarEventCount+`
		 FROM calendars c WHERE c.family_id = ? ORDER BY c.name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	defer rows.Close()

	calendars := []model.CalendarSummary{}
	for rows.Next() {
		c, err := scanCalendarSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		calendars = append(calendars, *c)
	}
	return calendars, rows.Err()
}

func (s *CalendarStore) listByFamily(ctx context.Context, familyID string) ([]model.Calendar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+calendarCols+` FROM calendars c WHERE c.family_id = ? ORDER BY c.name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family calendars: %w", err)
	}
	defer rows.Close()

	calendars := []model.Calendar{}
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		calendars = append(calendars, *c)
	}
	return calendars, rows.Err()
}

// NameExists reports whether another calendar in the family already uses
// name. excludeID is ignored when empty.
func (s *CalendarStore) NameExists(ctx context.Context, familyID, name, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calendars WHERE family_id = ? AND name = ? AND id <> ?`,
		familyID, name, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check calendar name: %w", err)
	}
	return n > 0, nil
}

func (s *CalendarStore) Create(ctx context.Context, familyID, name string, color *string) (*model.CalendarSummary, error) {
	now := database.Now()
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendars (id, name, color, family_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, color, familyID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}
	return &model.CalendarSummary{
		Calendar: model.Calendar{ID: id, Name: name, Color: color, FamilyID: familyID, CreatedAt: now, UpdatedAt: now},
	}, nil
}

// GetOwned returns the calendar if it belongs to one of userID's families.
func (s *CalendarStore) GetOwned(ctx context.Context, userID, id string) (*model.Calendar, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+calendarCols+` FROM calendars c WHERE c.id = ? AND c.`+ownedFamily,
		id, userID,
	)
	c, err := scanCalendar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	return c, nil
}

// InFamily reports whether calendar id belongs to familyID.
func (s *CalendarStore) InFamily(ctx context.Context, familyID, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calendars WHERE id = ? AND family_id = ?`, id, familyID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check calendar family: %w", err)
	}
	return n > 0, nil
}

// Get returns the calendar with its family and first 20 events, or nil
// when userID does not own it.
func (s *CalendarStore) Get(ctx context.Context, userID, id string) (*model.CalendarDetail, error) {
	var d model.CalendarDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT `+calendarCols+`, f.id, f.name, `+calendarEventCount+`
		 FROM calendars c JOIN families f ON f.id = c.family_id
		 WHERE c.id = ? AND f.user_id = ?`,
		id, userID,
	).Scan(&d.ID, &d.Name, &d.Color, &d.FamilyID, &d.CreatedAt, &d.UpdatedAt,
		&d.Family.ID, &d.Family.Name, &d.Count.Events)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}

	d.Events, err = listEvents(ctx, s.db, `e.calendar_id = ?`, []any{id}, 20)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Update applies u to an owned calendar and returns the refreshed detail,
// or nil when userID does not own it.
func (s *CalendarStore) Update(ctx context.Context, userID, id string, u CalendarUpdate) (*model.CalendarDetail, error) {
	var set setClause
	if v, ok := u.Name.Get(); ok {
		set.add("name", v)
	}
	if v, ok := u.Color.Get(); ok {
		set.add("color", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE calendars SET `+set.String()+` WHERE id = ? AND `+ownedFamily,
		append(set.args, id, userID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// DeleteUnused deletes an owned calendar that no event references, in a
// single statement. It reports false when nothing was deleted; the caller
// tells "not found" from "in use" with GetOwned.
func (s *CalendarStore) DeleteUnused(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM calendars WHERE id = ? AND `+ownedFamily+`
		 AND NOT EXISTS (SELECT 1 FROM events WHERE events.calendar_id = calendars.id)`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete calendar: %w", err)
	}
	return affected(res)
}
