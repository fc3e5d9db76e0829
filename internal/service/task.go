package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
)

func (s *Service) ListTasks(ctx context.Context, userID string, filter model.TaskFilter) ([]model.TaskView, error) {
	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, access.Internal("Failed to fetch tasks", err)
	}
	return tasks, nil
}

func (s *Service) CreateTask(ctx context.Context, userID string, f access.Fields) (*model.TaskView, error) {
	var (
		in  store.TaskInput
		err error
	)
	if in.Title, err = f.RequiredText("title", "Task title is required"); err != nil {
		return nil, err
	}
	if in.FamilyID, err = f.RequiredID("familyId", "Family ID is required"); err != nil {
		return nil, err
	}
	description, err := f.OptionalText("description")
	if err != nil {
		return nil, err
	}
	deadline, err := f.OptionalTime("deadline")
	if err != nil {
		return nil, err
	}
	in.Description, in.Deadline = description.OrElse(nil), deadline.OrElse(nil)

	if _, err := s.ownedFamily(ctx, userID, in.FamilyID); err != nil {
		return nil, err
	}
	t, err := s.tasks.Create(ctx, userID, in)
	if err != nil {
		return nil, access.Internal("Failed to create task", err)
	}
	s.publish(userID, EntityTask, ActionCreated, t.ID)
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, userID, id string) (*model.TaskDetail, error) {
	t, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch task", err)
	}
	if t == nil {
		return nil, access.NotFound("Task not found")
	}
	return t, nil
}

func (s *Service) UpdateTask(ctx context.Context, userID, id string, f access.Fields) (*model.TaskView, error) {
	if _, err := s.ownedTask(ctx, userID, id); err != nil {
		return nil, err
	}

	var (
		u   store.TaskUpdate
		err error
	)
	if u.Title, err = f.TextUpdate("title", "Task title is required"); err != nil {
		return nil, err
	}
	if u.Description, err = f.OptionalText("description"); err != nil {
		return nil, err
	}
	if u.Deadline, err = f.OptionalTime("deadline"); err != nil {
		return nil, err
	}
	if u.Completed, err = f.Flag("completed"); err != nil {
		return nil, err
	}

	t, err := s.tasks.Update(ctx, userID, id, u)
	if err != nil {
		return nil, access.Internal("Failed to update task", err)
	}
	if t == nil {
		return nil, access.NotFound("Task not found")
	}
	s.publish(userID, EntityTask, ActionUpdated, id)
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, id string) (map[string]string, error) {
	ok, err := s.tasks.Delete(ctx, userID, id)
	if err != nil {
		return nil, access.Internal("Failed to delete task", err)
	}
	if !ok {
		return nil, access.NotFound("Task not found")
	}
	s.publish(userID, EntityTask, ActionDeleted, id)
	return deleted("Task deleted successfully"), nil
}
