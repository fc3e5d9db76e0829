package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

const notificationLimit = 50

func (s *Service) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	n, err := s.notifications.ListByUser(ctx, userID, unreadOnly, notificationLimit)
	if err != nil {
		return nil, access.Internal("Failed to fetch notifications", err)
	}
	return n, nil
}

// MarkNotificationRead is idempotent for notifications that are already read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to update notification", err)
	}
	if !ok {
		exists, err := s.notifications.Exists(ctx, userID, id)
		if err != nil {
			return nil, access.Internal("Failed to update notification", err)
		}
		if !exists {
			return nil, access.NotFound("Notification not found")
		}
	}
	s.publish(userID, EntityNotification, ActionUpdated, id)
	return map[string]string{"message": "Notification marked as read"}, nil
}
