package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
)

const (
	invalidLatitude  = "Invalid latitude. Must be between -90 and 90"
	invalidLongitude = "Invalid longitude. Must be between -180 and 180"
	locationInUse    = "Cannot delete location with existing events. Please move or delete events first."
)

func (s *Service) ListLocations(ctx context.Context, userID, familyID string) ([]model.LocationSummary, error) {
	if familyID == "" {
		return nil, access.Invalid("Family ID is required")
	}
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	locations, err := s.locations.List(ctx, familyID)
	if err != nil {
		return nil, access.Internal("Failed to fetch locations", err)
	}
	return locations, nil
}

func (s *Service) CreateLocation(ctx context.Context, userID string, f access.Fields) (*model.LocationSummary, error) {
	var (
		in  store.LocationInput
		err error
	)
	if in.Label, err = f.RequiredText("label", "Location label is required"); err != nil {
		return nil, err
	}
	familyID, err := f.RequiredID("familyId", "Family ID is required")
	if err != nil {
		return nil, err
	}
	lat, err := f.Range("latitude", -90, 90, false, invalidLatitude)
	if err != nil {
		return nil, err
	}
	lng, err := f.Range("longitude", -180, 180, false, invalidLongitude)
	if err != nil {
		return nil, err
	}
	address, err := f.OptionalText("address")
	if err != nil {
		return nil, err
	}
	notes, err := f.OptionalText("notes")
	if err != nil {
		return nil, err
	}
	in.Latitude, in.Longitude = lat.OrElse(nil), lng.OrElse(nil)
	in.Address, in.Notes = address.OrElse(nil), notes.OrElse(nil)

	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	l, err := s.locations.Create(ctx, familyID, in)
	if err != nil {
		return nil, access.Internal("Failed to create location", err)
	}
	s.publish(userID, EntityLocation, ActionCreated, l.ID)
	return l, nil
}

func (s *Service) GetLocation(ctx context.Context, userID, id string) (*model.LocationDetail, error) {
	l, err := s.locations.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch location", err)
	}
	if l == nil {
		return nil, access.NotFound("Location not found")
	}
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, userID, id string, f access.Fields) (*model.LocationDetail, error) {
	existing, err := s.locations.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to update location", err)
	}
	if existing == nil {
		return nil, access.NotFound("Location not found")
	}

	var u store.LocationUpdate
	if u.Label, err = f.TextUpdate("label", "Location label is required"); err != nil {
		return nil, err
	}
	if u.Latitude, err = f.Range("latitude", -90, 90, true, invalidLatitude); err != nil {
		return nil, err
	}
	if u.Longitude, err = f.Range("longitude", -180, 180, true, invalidLongitude); err != nil {
		return nil, err
	}
	if u.Address, err = f.OptionalText("address"); err != nil {
		return nil, err
	}
	if u.Notes, err = f.OptionalText("notes"); err != nil {
		return nil, err
	}

	l, err := s.locations.Update(ctx, userID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update location", err)
	}
	if l == nil {
		return nil, access.NotFound("Location not found")
	}
	s.publish(userID, EntityLocation, ActionUpdated, id)
	return l, nil
}

func (s *Service) DeleteLocation(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.locations.DeleteUnused(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete location", err)
	}
	if !ok {
		existing, err := s.locations.GetOwned(ctx, userID, id)
		if err != nil {
			return nil, access.Internal("Failed to delete location", err)
		}
		if existing == nil {
			return nil, access.NotFound("Location not found")
		}
		return nil, access.Conflict(locationInUse)
	}
	s.publish(userID, EntityLocation, ActionDeleted, id)
	return deleted("Location deleted successfully"), nil
}
