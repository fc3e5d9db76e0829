package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
)

const invalidChannel = "Invalid channel. Must be PUSH, EMAIL, or SMS"

func (s *Service) ListReminders(ctx context.Context, userID string, filter model.ReminderFilter) ([]model.ReminderView, error) {
	if filter.Upcoming && filter.Now.IsZero() {
		filter.Now = s.now()
	}
	reminders, err := s.reminders.List(ctx, userID, filter)
	if err != nil {
		return nil, access.Internal("Failed to fetch reminders", err)
	}
	return reminders, nil
}

// CreateReminder validates the whole body before it verifies that the
// target task or event belongs to the caller.
func (s *Service) CreateReminder(ctx context.Context, userID string, f access.Fields) (*model.ReminderView, error) {
	remindAt, err := f.Time("remindAt")
	if err != nil {
		return nil, err
	}
	at := remindAt.OrElse(nil)
	if at == nil {
		return nil, access.Invalid("Remind time is required")
	}

	taskOpt, err := f.ID("taskId")
	if err != nil {
		return nil, err
	}
	eventOpt, err := f.ID("eventId")
	if err != nil {
		return nil, err
	}
	taskID, eventID := taskOpt.OrElse(nil), eventOpt.OrElse(nil)
	switch {
	case taskID == nil && eventID == nil:
		return nil, access.Invalid("Either taskId or eventId is required")
	case taskID != nil && eventID != nil:
		return nil, access.Invalid("Cannot set reminder for both task and event")
	}

	channel, err := f.OneOf("channel", model.Channels, invalidChannel)
	if err != nil {
		return nil, err
	}

	if taskID != nil {
		if _, err := s.ownedTask(ctx, userID, *taskID); err != nil {
			return nil, err
		}
	} else {
		ev, err := s.events.GetOwned(ctx, userID, *eventID)
		if err != nil {
			return nil, access.Internal("Failed to fetch event", err)
		}
		if ev == nil {
			return nil, access.NotFound("Event not found")
		}
	}

	r, err := s.reminders.Create(ctx, userID, store.ReminderInput{
		RemindAt: *at,
		Channel:  channel.OrElse(model.ChannelPush),
		TaskID:   taskID,
		EventID:  eventID,
	})
	if err != nil {
		return nil, access.Internal("Failed to create reminder", err)
	}
	s.publish(userID, EntityReminder, ActionCreated, r.ID)
	return r, nil
}

func (s *Service) GetReminder(ctx context.Context, userID, id string) (*model.ReminderView, error) {
	r, err := s.reminders.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch reminder", err)
	}
	if r == nil {
		return nil, access.NotFound("Reminder not found")
	}
	return r, nil
}

// UpdateReminder changes the due time, channel or sent stamp. The target
// task or event is fixed at creation.
func (s *Service) UpdateReminder(ctx context.Context, userID, id string, f access.Fields) (*model.ReminderView, error) {
	if _, err := s.GetReminder(ctx, userID, id); err != nil {
		return nil, err
	}

	var (
		u   store.ReminderUpdate
		err error
	)
	if u.RemindAt, err = requiredTime(f, "remindAt"); err != nil {
		return nil, err
	}
	if u.Channel, err = f.OneOf("channel", model.Channels, invalidChannel); err != nil {
		return nil, err
	}
	if u.SentAt, err = f.OptionalTime("sentAt"); err != nil {
		return nil, err
	}

	r, err := s.reminders.Update(ctx, userID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update reminder", err)
	}
	if r == nil {
		return nil, access.NotFound("Reminder not found")
	}
	s.publish(userID, EntityReminder, ActionUpdated, id)
	return r, nil
}

func (s *Service) DeleteReminder(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.reminders.Delete(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete reminder", err)
	}
	if !ok {
		return nil, access.NotFound("Reminder not found")
	}
	s.publish(userID, EntityReminder, ActionDeleted, id)
	return deleted("Reminder deleted successfully"), nil
}
