package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

func (s *Service) ListMembers(ctx context.Context, userID, familyID string) ([]model.FamilyMember, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, familyID)
	if err != nil {
		return nil, access.Internal("Failed to fetch family members", err)
	}
	return members, nil
}

func (s *Service) CreateMember(ctx context.Context, userID, familyID string, f access.Fields) (*model.FamilyMember, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	name, err := f.RequiredText("name", "Member name is required")
	if err != nil {
		return nil, err
	}
	m, err := s.members.Create(ctx, familyID, name)
	if err != nil {
		return nil, access.Internal("Failed to create family member", err)
	}
	s.publish(userID, EntityMember, ActionCreated, m.ID)
	return m, nil
}

func (s *Service) GetMember(ctx context.Context, userID, familyID, id string) (*model.FamilyMember, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	m, err := s.members.Get(ctx, familyID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch family member", err)
	}
	if m == nil {
		return nil, access.NotFound("Family member not found")
	}
	return m, nil
}

func (s *Service) UpdateMember(ctx context.Context, userID, familyID, id string, f access.Fields) (*model.FamilyMember, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	name, err := f.RequiredText("name", "Member name is required")
	if err != nil {
		return nil, err
	}
	m, err := s.members.Update(ctx, familyID, id, name)
	if err != nil {
		return nil, access.Internal("Failed to update family member", err)
	}
	if m == nil {
		return nil, access.NotFound("Family member not found")
	}
	s.publish(userID, EntityMember, ActionUpdated, id)
	return m, nil
}

func (s *Service) DeleteMember(ctx context.Context, userID, familyID, id string) (map[string]string, error) {
	if _, err := s.ownedFamily(ctx, userID, familyID); err != nil {
		return nil, err
	}
	ok, err := s.members.Delete(ctx, familyID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete family member", err)
	}
	if !ok {
		return nil, access.NotFound("Family member not found")
	}
	s.publish(userID, EntityMember, ActionDeleted, id)
	return deleted("Family member deleted successfully"), nil
}
