package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
	"github.com/samber/mo"
)

func (s *Service) ListEvents(ctx context.Context, userID string, filter model.EventFilter) ([]model.EventView, error) {
	events, err := s.events.List(ctx, userID, filter)
	if err != nil {
		return nil, access.Internal("Failed to fetch events", err)
	}
	return events, nil
}

// checkCalendar fails with "Calendar not found" unless id is in familyID.
func (s *Service) checkCalendar(ctx context.Context, familyID, id string) error {
	ok, err := s.calendars.InFamily(ctx, familyID, id)
	if err != nil {
		return access.Internal("Failed to fetch calendar", err)
	}
	if !ok {
		return access.NotFound("Calendar not found")
	}
	return nil
}

func (s *Service) checkLocation(ctx context.Context, familyID, id string) error {
	ok, err := s.locations.InFamily(ctx, familyID, id)
	if err != nil {
		return access.Internal("Failed to fetch location", err)
	}
	if !ok {
		return access.NotFound("Location not found")
	}
	return nil
}

func (s *Service) CreateEvent(ctx context.Context, userID string, f access.Fields) (*model.EventView, error) {
	var (
		in  store.EventInput
		err error
	)
	if in.Title, err = f.RequiredText("title", "Event title is required"); err != nil {
		return nil, err
	}
	start, err := f.Time("startTime")
	if err != nil {
		return nil, err
	}
	end, err := f.Time("endTime")
	if err != nil {
		return nil, err
	}
	if start.OrElse(nil) == nil || end.OrElse(nil) == nil {
		return nil, access.Invalid("Start time and end time are required")
	}
	in.StartTime, in.EndTime = *start.MustGet(), *end.MustGet()

	if in.FamilyID, err = f.RequiredID("familyId", "Family ID is required"); err != nil {
		return nil, err
	}
	if in.CalendarID, err = f.RequiredID("calendarId", "Calendar ID is required"); err != nil {
		return nil, err
	}
	location, err := f.ID("locationId")
	if err != nil {
		return nil, err
	}
	in.LocationID = location.OrElse(nil)
	description, err := f.OptionalText("description")
	if err != nil {
		return nil, err
	}
	address, err := f.OptionalText("address")
	if err != nil {
		return nil, err
	}
	in.Description, in.Address = description.OrElse(nil), address.OrElse(nil)

	if _, err := s.ownedFamily(ctx, userID, in.FamilyID); err != nil {
		return nil, err
	}
	if err := s.checkCalendar(ctx, in.FamilyID, in.CalendarID); err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		if err := s.checkLocation(ctx, in.FamilyID, *in.LocationID); err != nil {
			return nil, err
		}
	}

	e, err := s.events.Create(ctx, userID, in)
	if err != nil {
		return nil, access.Internal("Failed to create event", err)
	}
	s.publish(userID, EntityEvent, ActionCreated, e.ID)
	return e, nil
}

func (s *Service) GetEvent(ctx context.Context, userID, id string) (*model.EventDetail, error) {
	e, err := s.events.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch event", err)
	}
	if e == nil {
		return nil, access.NotFound("Event not found")
	}
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, userID, id string, f access.Fields) (*model.EventDetail, error) {
	existing, err := s.events.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to update event", err)
	}
	if existing == nil {
		return nil, access.NotFound("Event not found")
	}

	var u store.EventUpdate
	if u.Title, err = f.TextUpdate("title", "Event title is required"); err != nil {
		return nil, err
	}
	if u.Description, err = f.OptionalText("description"); err != nil {
		return nil, err
	}
	if u.Address, err = f.OptionalText("address"); err != nil {
		return nil, err
	}
	if u.StartTime, err = requiredTime(f, "startTime"); err != nil {
		return nil, err
	}
	if u.EndTime, err = requiredTime(f, "endTime"); err != nil {
		return nil, err
	}
	if u.Completed, err = f.Flag("completed"); err != nil {
		return nil, err
	}

	calendar, err := f.ID("calendarId")
	if err != nil {
		return nil, err
	}
	if v, ok := calendar.Get(); ok {
		if v == nil {
			return nil, access.NotFound("Calendar not found")
		}
		if err := s.checkCalendar(ctx, existing.FamilyID, *v); err != nil {
			return nil, err
		}
		u.CalendarID = mo.Some(*v)
	}

	if u.LocationID, err = f.ID("locationId"); err != nil {
		return nil, err
	}
	if v, ok := u.LocationID.Get(); ok && v != nil {
		if err := s.checkLocation(ctx, existing.FamilyID, *v); err != nil {
			return nil, err
		}
	}

	e, err := s.events.Update(ctx, userID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update event", err)
	}
	if e == nil {
		return nil, access.NotFound("Event not found")
	}
	s.publish(userID, EntityEvent, ActionUpdated, id)
	return e, nil
}

func (s *Service) DeleteEvent(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.events.Delete(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete event", err)
	}
	if !ok {
		return nil, access.NotFound("Event not found")
	}
	s.publish(userID, EntityEvent, ActionDeleted, id)
	return deleted("Event deleted successfully"), nil
}
