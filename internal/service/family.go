package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

func (s *Service) ListFamilies(ctx context.Context, userID string) ([]model.FamilySummary, error) {
	families, err := s.families.List(ctx, userID)
	if err != nil {
		return nil, access.Internal("Failed to fetch families", err)
	}
	return families, nil
}

func (s *Service) CreateFamily(ctx context.Context, userID string, f access.Fields) (*model.FamilySummary, error) {
	name, err := f.RequiredText("name", "Family name is required")
	if err != nil {
		return nil, err
	}
	family, err := s.families.Create(ctx, userID, name)
	if err != nil {
		return nil, access.Internal("Failed to create family", err)
	}
	s.publish(userID, EntityFamily, ActionCreated, family.ID)
	return family, nil
}

func (s *Service) GetFamily(ctx context.Context, userID, id string) (*model.FamilyDetail, error) {
	family, err := s.families.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch family", err)
	}
	if family == nil {
		return nil, access.NotFound("Family not found")
	}
	return family, nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID, id string, f access.Fields) (*model.FamilySummary, error) {
	name, err := f.RequiredText("name", "Family name is required")
	if err != nil {
		return nil, err
	}
	family, err := s.families.Update(ctx, userID, id, name)
	if err != nil {
		return nil, access.Internal("Failed to update family", err)
	}
	if family == nil {
		return nil, access.NotFound("Family not found")
	}
	s.publish(userID, EntityFamily, ActionUpdated, id)
	return family, nil
}

// DeleteFamily removes the family and, through the schema, everything in it.
func (s *Service) DeleteFamily(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.families.Delete(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete family", err)
	}
	if !ok {
		return nil, access.NotFound("Family not found")
	}
	s.publish(userID, EntityFamily, ActionDeleted, id)
	return deleted("Family deleted successfully"), nil
}
