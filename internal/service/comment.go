package service

import (
	"context"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/model"
)

const (
	defaultCommentLimit = 20
	maxCommentLimit     = 100
	notCommentAuthor    = "Comment not found or you are not the author"
)

// ListComments pages a task's comments newest first. Out-of-range page
// and limit values fall back to the defaults.
func (s *Service) ListComments(ctx context.Context, userID, taskID string, page, limit int) (*model.CommentPage, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}

	comments, total, err := s.comments.Page(ctx, taskID, page, limit)
	if err != nil {
		return nil, access.Internal("Failed to fetch task comments", err)
	}
	return &model.CommentPage{
		Comments: comments,
		Pagination: model.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

func (s *Service) CreateComment(ctx context.Context, userID, taskID string, f access.Fields) (*model.Comment, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	content, err := f.RequiredText("content", "Comment content is required")
	if err != nil {
		return nil, err
	}
	c, err := s.comments.Create(ctx, taskID, userID, content)
	if err != nil {
		return nil, access.Internal("Failed to create task comment", err)
	}
	s.publish(userID, EntityComment, ActionCreated, c.ID)
	return c, nil
}

func (s *Service) GetComment(ctx context.Context, userID, taskID, id string) (*model.Comment, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	c, err := s.comments.Get(ctx, taskID, id)
	if err != nil {
		return nil, access.Internal("Failed to fetch task comment", err)
	}
	if c == nil {
		return nil, access.NotFound("Comment not found")
	}
	return c, nil
}

func (s *Service) UpdateComment(ctx context.Context, userID, taskID, id string, f access.Fields) (*model.Comment, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	content, err := f.RequiredText("content", "Comment content is required")
	if err != nil {
		return nil, err
	}
	c, err := s.comments.UpdateByAuthor(ctx, taskID, id, userID, content)
	if err != nil {
		return nil, access.Internal("Failed to update task comment", err)
	}
	if c == nil {
		return nil, access.NotFound(notCommentAuthor)
	}
	s.publish(userID, EntityComment, ActionUpdated, id)
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, taskID, id string) (map[string]string, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	ok, err := s.comments.DeleteByAuthor(ctx, taskID, id, userID)
	if err != nil {
		return nil, access.Internal("Failed to delete task comment", err)
	}
	if !ok {
		return nil, access.NotFound(notCommentAuthor)
	}
	s.publish(userID, EntityComment, ActionDeleted, id)
	return deleted("Comment deleted successfully"), nil
}
