package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
)

const (
	calendarNameTaken = "Calendar with this name already exists in this family"
	calendarInUse     = "Cannot delete calendar with existing events. Please move or delete events first."
)

func (s *Service) ListCalendars(ctx context.Context, userID, familyID string) ([]model.CalendarSummary, error) {
	if familyID == "" {
		return nil, access.Invalid("Family ID is required")
	}
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	calendars, err := s.calendars.List(ctx, familyID)
	if err != nil {
		return nil, access.Internal("Failed to fetch calendars", err)
	}
	return calendars, nil
}

func (s *Service) CreateCalendar(ctx context.Context, userID string, f access.Fields) (*model.CalendarSummary, error) {
	name, err := f.RequiredText("name", "Calendar name is required")
	if err != nil {
		return nil, err
	}
	familyID, err := f.RequiredID("familyId", "Family ID is required")
	if err != nil {
		return nil, err
	}
	color, err := f.OptionalText("color")
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}

	// Check-then-insert: two concurrent creates can both pass.
	taken, err := s.calendars.NameExists(ctx, familyID, name, "")
	if err != nil {
		return nil, access.Internal("Failed to create calendar", err)
	}
	if taken {
		return nil, access.Conflict(calendarNameTaken)
	}

	c, err := s.calendars.Create(ctx, familyID, name, color.OrElse(nil))
	if err != nil {
		return nil, access.Internal("Failed to create calendar", err)
	}
	s.publish(userID, EntityCalendar, ActionCreated, c.ID)
	return c, nil
}

func (s *Service) GetCalendar(ctx context.Context, userID, id string) (*model.CalendarDetail, error) {
	c, err := s.calendars.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch calendar", err)
	}
	if c == nil {
		return nil, access.NotFound("Calendar not found")
	}
	return c, nil
}

func (s *Service) UpdateCalendar(ctx context.Context, userID, id string, f access.Fields) (*model.CalendarDetail, error) {
	existing, err := s.calendars.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to update calendar", err)
	}
	if existing == nil {
		return nil, access.NotFound("Calendar not found")
	}

	var u store.CalendarUpdate
	if u.Name, err = f.TextUpdate("name", "Calendar name is required"); err != nil {
		return nil, err
	}
	if u.Color, err = f.OptionalText("color"); err != nil {
		return nil, err
	}
	if name, ok := u.Name.Get(); ok {
		taken, err := s.calendars.NameExists(ctx, existing.FamilyID, name, id)
		if err != nil {
			return nil, access.Internal("Failed to update calendar", err)
		}
		if taken {
			return nil, access.Conflict(calendarNameTaken)
		}
	}

	c, err := s.calendars.Update(ctx, userID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update calendar", err)
	}
	if c == nil {
		return nil, access.NotFound("Calendar not found")
	}
	s.publish(userID, EntityCalendar, ActionUpdated, id)
	return c, nil
}

// DeleteCalendar deletes an owned calendar that has no events. A refused
// delete is a conflict when the calendar is still there, otherwise a miss.
func (s *Service) DeleteCalendar(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.calendars.DeleteUnused(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete calendar", err)
	}
	if !ok {
		existing, err := s.calendars.GetOwned(ctx, userID, id)
		if err != nil {
			return nil, access.Internal("Failed to delete calendar", err)
		}
		if existing == nil {
			return nil, access.NotFound("Calendar not found")
		}
		return nil, access.Conflict(calendarInUse)
	}
	s.publish(userID, EntityCalendar, ActionDeleted, id)
	return deleted("Calendar deleted successfully"), nil
}

// CalendarEvents returns an owned calendar with every one of its events.
func (s *Service) CalendarEvents(ctx context.Context, userID, id string) (*model.Calendar, []model.Event, error) {
	c, err := s.calendars.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, nil, access.Internal("Failed to fetch calendar", err)
	}
	if c == nil {
		return nil, nil, access.NotFound("Calendar not found")
	}
	events, err := s.events.ListByCalendar(ctx, id)
	if err != nil {
		return nil, nil, access.Internal("Failed to fetch events", err)
	}
	return c, events, nil
}
