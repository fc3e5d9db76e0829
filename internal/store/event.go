package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

type EventStore struct {
	db *database.DB
}

func NewEventStore(db *database.DB) *EventStore {
	return &EventStore{db: db}
}

type EventInput struct {
	Title       string
	Description *string
	Address     *string
	StartTime   time.Time
	EndTime     time.Time
	FamilyID    string
	CalendarID  string
	LocationID  *string
}

type EventUpdate struct {
	Title       mo.Option[string]
	Description mo.Option[*string]
	Address     mo.Option[*string]
	StartTime   mo.Option[time.Time]
	EndTime     mo.Option[time.Time]
	Completed   mo.Option[bool]
	CalendarID  mo.Option[string]
	LocationID  mo.Option[*string]
}

const eventCols = `e.id, e.title, e.description, e.address, e.start_time, e.end_time, e.completed,
	e.family_id, e.calendar_id, e.location_id, e.user_id, e.created_at, e.updated_at`

func eventDest(e *model.Event) []any {
	return []any{&e.ID, &e.Title, &e.Description, &e.Address, &e.StartTime, &e.EndTime, &e.Completed,
		&e.FamilyID, &e.CalendarID, &e.LocationID, &e.UserID, &e.CreatedAt, &e.UpdatedAt}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	if err := scanner.Scan(eventDest(&e)...); err != nil {
		return nil, err
	}
	return &e, nil
}

// listEvents returns events matching where, earliest first. limit <= 0
// means no limit.
func listEvents(ctx context.Context, db *database.DB, where string, args []any, limit int) ([]model.Event, error) {
	q := `SELECT ` + eventCols + ` FROM events e WHERE ` + where + ` ORDER BY e.start_time ASC`
	if limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

const eventViewSelect = `SELECT ` + eventCols + `,
	f.name, c.name, c.color, l.id, l.label, l.address,
	(SELECT COUNT(*) FROM reminders r WHERE r.event_id = e.id),
	(SELECT COUNT(*) FROM notifications n WHERE n.event_id = e.id)
	FROM events e
	JOIN families f ON f.id = e.family_id
	JOIN calendars c ON c.id = e.calendar_id
	LEFT JOIN locations l ON l.id = e.location_id`

func scanEventView(scanner interface{ Scan(...any) error }) (*model.EventView, error) {
	var (
		v               model.EventView
		locID, locLabel *string
		locAddress      *string
	)
	dest := append(eventDest(&v.Event),
		&v.Family.Name, &v.Calendar.Name, &v.Calendar.Color, &locID, &locLabel, &locAddress,
		&v.Count.Reminders, &v.Count.Notifications)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	v.Family.ID = v.FamilyID
	v.Calendar.ID = v.CalendarID
	if locID != nil {
		v.Location = &model.LocationRef{ID: *locID, Address: locAddress}
		if locLabel != nil {
			v.Location.Label = *locLabel
		}
	}
	return &v, nil
}

// List returns userID's events matching f, earliest first.
func (s *EventStore) List(ctx context.Context, userID string, f model.EventFilter) ([]model.EventView, error) {
	where := []string{"e.user_id = ?"}
	args := []any{userID}
	if f.FamilyID != "" {
		where = append(where, "e.family_id = ?")
		args = append(args, f.FamilyID)
	}
	if f.StartDate != nil && f.EndDate != nil {
		where = append(where, "e.start_time >= ?", "e.start_time <= ?")
		args = append(args, *f.StartDate, *f.EndDate)
	}
	if f.Completed != nil {
		where = append(where, "e.completed = ?")
		args = append(args, *f.Completed)
	}

	rows, err := s.db.QueryContext(ctx,
		eventViewSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY e.start_time ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.EventView{}
	for rows.Next() {
		v, err := scanEventView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *v)
	}
	return events, rows.Err()
}

func (s *EventStore) getView(ctx context.Context, userID, id string) (*model.EventView, error) {
	row := s.db.QueryRowContext(ctx, eventViewSelect+` WHERE e.id = ? AND e.user_id = ?`, id, userID)
	v, err := scanEventView(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return v, nil
}

func (s *EventStore) Create(ctx context.Context, userID string, in EventInput) (*model.EventView, error) {
	now := database.Now()
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, address, start_time, end_time, completed,
		   family_id, calendar_id, location_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Description, in.Address, in.StartTime, in.EndTime, false,
		in.FamilyID, in.CalendarID, in.LocationID, userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return s.getView(ctx, userID, id)
}

// GetOwned returns the bare event row owned by userID, or nil.
func (s *EventStore) GetOwned(ctx context.Context, userID, id string) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventCols+` FROM events e WHERE e.id = ? AND e.user_id = ?`, id, userID,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Get returns the event with its reminders and 10 newest notifications.
func (s *EventStore) Get(ctx context.Context, userID, id string) (*model.EventDetail, error) {
	v, err := s.getView(ctx, userID, id)
	if err != nil || v == nil {
		return nil, err
	}
	d := &model.EventDetail{EventView: *v}
	if d.Reminders, err = listReminders(ctx, s.db, `event_id = ?`, []any{id}); err != nil {
		return nil, err
	}
	if d.Notifications, err = listNotifications(ctx, s.db, `event_id = ?`, []any{id}, 10); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *EventStore) Update(ctx context.Context, userID, id string, u EventUpdate) (*model.EventDetail, error) {
	var set setClause
	if v, ok := u.Title.Get(); ok {
		set.add("title", v)
	}
	if v, ok := u.Description.Get(); ok {
		set.add("description", v)
	}
	if v, ok := u.Address.Get(); ok {
		set.add("address", v)
	}
	if v, ok := u.StartTime.Get(); ok {
		set.add("start_time", v)
	}
	if v, ok := u.EndTime.Get(); ok {
		set.add("end_time", v)
	}
	if v, ok := u.Completed.Get(); ok {
		set.add("completed", v)
	}
	if v, ok := u.CalendarID.Get(); ok {
		set.add("calendar_id", v)
	}
	if v, ok := u.LocationID.Get(); ok {
		set.add("location_id", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET `+set.String()+` WHERE id = ? AND user_id = ?`,
		append(set.args, id, userID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *EventStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return affected(res)
}

// ListByCalendar returns every event of a calendar, earliest first.
func (s *EventStore) ListByCalendar(ctx context.Context, calendarID string) ([]model.Event, error) {
	return listEvents(ctx, s.db, `e.calendar_id = ?`, []any{calendarID}, 0)
}
