package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
	"github.com/samber/mo"
)

func (s *Service) ListChecklist(ctx context.Context, userID, taskID string) ([]model.ChecklistItem, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	items, err := s.checklist.List(ctx, taskID)
	if err != nil {
		return nil, access.Internal("Failed to fetch checklist items", err)
	}
	return items, nil
}

// CreateChecklistItem appends to the end of the list unless a position
// is given.
func (s *Service) CreateChecklistItem(ctx context.Context, userID, taskID string, f access.Fields) (*model.ChecklistItem, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	title, err := f.RequiredText("title", "Checklist item title is required")
	if err != nil {
		return nil, err
	}
	position, err := f.Int("position")
	if err != nil {
		return nil, err
	}

	var pos int
	if p := position.OrElse(nil); p != nil {
		pos = *p
	} else if pos, err = s.checklist.NextPosition(ctx, taskID); err != nil {
		return nil, access.Internal("Failed to create checklist item", err)
	}

	item, err := s.checklist.Create(ctx, taskID, title, pos)
	if err != nil {
		return nil, access.Internal("Failed to create checklist item", err)
	}
	s.publish(userID, EntityChecklist, ActionCreated, item.ID)
	return item, nil
}

func (s *Service) GetChecklistItem(ctx context.Context, userID, taskID, id string) (*model.ChecklistItem, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	item, err := s.checklist.Get(ctx, taskID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch checklist item", err)
	}
	if item == nil {
		return nil, access.NotFound("Checklist item not found")
	}
	return item, nil
}

func (s *Service) UpdateChecklistItem(ctx context.Context, userID, taskID, id string, f access.Fields) (*model.ChecklistItem, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	var (
		u   store.ChecklistUpdate
		err error
	)
	if u.Title, err = f.TextUpdate("title", "Checklist item title is required"); err != nil {
		return nil, err
	}
	if u.Completed, err = f.Flag("completed"); err != nil {
		return nil, err
	}
	position, err := f.Int("position")
	if err != nil {
		return nil, err
	}
	if p, ok := position.Get(); ok {
		if p == nil {
			return nil, access.Invalid("position must be an integer")
		}
		u.Position = mo.Some(*p)
	}

	item, err := s.checklist.Update(ctx, taskID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update checklist item", err)
	}
	if item == nil {
		return nil, access.NotFound("Checklist item not found")
	}
	s.publish(userID, EntityChecklist, ActionUpdated, id)
	return item, nil
}

func (s *Service) DeleteChecklistItem(ctx context.Context, userID, taskID, id string) (map[string]string, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	ok, err := s.checklist.Delete(ctx, taskID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete checklist item", err)
	}
	if !ok {
		return nil, access.NotFound("Checklist item not found")
	}
	s.publish(userID, EntityChecklist, ActionDeleted, id)
	return deleted("Checklist item deleted successfully"), nil
}
