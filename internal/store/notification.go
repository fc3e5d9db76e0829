package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

type NotificationStore struct {
	db *database.DB
}

func NewNotificationStore(db *database.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, title, body, channel, read_at, user_id, task_id, event_id, reminder_id, created_at`

// listNotifications returns notifications matching where, newest first.
func listNotifications(ctx context.Context, db *database.DB, where string, args []any, limit int) ([]model.Notification, error) {
	q := `SELECT ` + notificationCols + ` FROM notifications WHERE ` + where + ` ORDER BY created_at DESC`
	if limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Channel, &n.ReadAt, &n.UserID,
			&n.TaskID, &n.EventID, &n.ReminderID, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	n.ID = newID()
	n.CreatedAt = database.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Body, n.Channel, n.ReadAt, n.UserID, n.TaskID, n.EventID, n.ReminderID, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &n, nil
}

// ListByUser returns userID's newest notifications, optionally unread only.
func (s *NotificationStore) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	where := `user_id = ?`
	if unreadOnly {
		where += ` AND read_at IS NULL`
	}
	return listNotifications(ctx, s.db, where, []any{userID}, limit)
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE id = ? AND user_id = ? AND read_at IS NULL`,
		database.Now(), id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return affected(res)
}

func (s *NotificationStore) Exists(ctx context.Context, userID, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	return n > 0, nil
}
