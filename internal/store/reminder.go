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

type ReminderStore struct {
	db *database.DB
}

func NewReminderStore(db *database.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// ReminderInput targets exactly one of TaskID or EventID.
type ReminderInput struct {
	RemindAt time.Time
	Channel  string
	TaskID   *string
	EventID  *string
}

type ReminderUpdate struct {
	RemindAt mo.Option[time.Time]
	Channel  mo.Option[string]
	SentAt   mo.Option[*time.Time]
}

const reminderCols = `r.id, r.remind_at, r.channel, r.sent_at, r.user_id, r.task_id, r.event_id, r.created_at, r.updated_at`

func reminderDest(r *model.Reminder) []any {
	return []any{&r.ID, &r.RemindAt, &r.Channel, &r.SentAt, &r.UserID, &r.TaskID, &r.EventID, &r.CreatedAt, &r.UpdatedAt}
}

// listReminders returns plain reminders matching where (unaliased), by due time.
func listReminders(ctx context.Context, db *database.DB, where string, args []any) ([]model.Reminder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+reminderCols+` FROM reminders r
		 WHERE r.id IN (SELECT id FROM reminders WHERE `+where+`) ORDER BY r.remind_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	reminders := []model.Reminder{}
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(reminderDest(&r)...); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

const reminderViewSelect = `SELECT ` + reminderCols + `,
	t.title, t.completed, e.title, e.start_time, e.completed
	FROM reminders r
	LEFT JOIN tasks t ON t.id = r.task_id
	LEFT JOIN events e ON e.id = r.event_id`

func scanReminderView(scanner interface{ Scan(...any) error }) (*model.ReminderView, error) {
	var (
		v              model.ReminderView
		taskTitle      *string
		taskCompleted  *bool
		eventTitle     *string
		eventStart     *time.Time
		eventCompleted *bool
	)
	dest := append(reminderDest(&v.Reminder), &taskTitle, &taskCompleted, &eventTitle, &eventStart, &eventCompleted)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	if v.TaskID != nil && taskTitle != nil {
		v.Task = &model.TaskRef{ID: *v.TaskID, Title: *taskTitle, Completed: taskCompleted != nil && *taskCompleted}
	}
	if v.EventID != nil && eventTitle != nil {
		v.Event = &model.EventRef{ID: *v.EventID, Title: *eventTitle, Completed: eventCompleted != nil && *eventCompleted}
		if eventStart != nil {
			v.Event.StartTime = *eventStart
		}
	}
	return &v, nil
}

func (s *ReminderStore) queryViews(ctx context.Context, q string, args ...any) ([]model.ReminderView, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	reminders := []model.ReminderView{}
	for rows.Next() {
		v, err := scanReminderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *v)
	}
	return reminders, rows.Err()
}

// List returns userID's reminders matching f, by due time.
func (s *ReminderStore) List(ctx context.Context, userID string, f model.ReminderFilter) ([]model.ReminderView, error) {
	where := []string{"r.user_id = ?"}
	args := []any{userID}
	if f.TaskID != "" {
		where = append(where, "r.task_id = ?")
		args = append(args, f.TaskID)
	}
	if f.EventID != "" {
		where = append(where, "r.event_id = ?")
		args = append(args, f.EventID)
	}
	if f.Upcoming {
		where = append(where, "r.remind_at >= ?")
		args = append(args, f.Now)
	}
	if f.Sent != nil {
		if *f.Sent {
			where = append(where, "r.sent_at IS NOT NULL")
		} else {
			where = append(where, "r.sent_at IS NULL")
		}
	}
	return s.queryViews(ctx,
		reminderViewSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY r.remind_at ASC`,
		args...,
	)
}

func (s *ReminderStore) Get(ctx context.Context, userID, id string) (*model.ReminderView, error) {
	row := s.db.QueryRowContext(ctx, reminderViewSelect+` WHERE r.id = ? AND r.user_id = ?`, id, userID)
	v, err := scanReminderView(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return v, nil
}

func (s *ReminderStore) Create(ctx context.Context, userID string, in ReminderInput) (*model.ReminderView, error) {
	now := database.Now()
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, remind_at, channel, sent_at, user_id, task_id, event_id, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?)`,
		id, in.RemindAt, in.Channel, userID, in.TaskID, in.EventID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *ReminderStore) Update(ctx context.Context, userID, id string, u ReminderUpdate) (*model.ReminderView, error) {
	var set setClause
	if v, ok := u.RemindAt.Get(); ok {
		set.add("remind_at", v)
	}
	if v, ok := u.Channel.Get(); ok {
		set.add("channel", v)
	}
	if v, ok := u.SentAt.Get(); ok {
		set.add("sent_at", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET `+set.String()+` WHERE id = ? AND user_id = ?`,
		append(set.args, id, userID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *ReminderStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete reminder: %w", err)
	}
	return affected(res)
}

// ListDue returns unsent reminders due at or before now across all users,
// oldest first.
func (s *ReminderStore) ListDue(ctx context.Context, now time.Time, limit int) ([]model.ReminderView, error) {
	return s.queryViews(ctx,
		reminderViewSelect+` WHERE r.sent_at IS NULL AND r.remind_at <= ?
		 ORDER BY r.remind_at ASC LIMIT `+strconv.Itoa(limit),
		now,
	)
}

// MarkSent stamps sent_at if the reminder is still unsent. It reports
// false when another dispatcher got there first.
func (s *ReminderStore) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET sent_at = ?, updated_at = ? WHERE id = ? AND sent_at IS NULL`,
		at, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return affected(res)
}
