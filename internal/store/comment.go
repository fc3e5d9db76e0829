package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

// CommentStore is keyed by task id. Writes are additionally restricted to
// the comment's author.
type CommentStore struct {
	db *database.DB
}

func NewCommentStore(db *database.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentCols = `tc.id, tc.content, tc.task_id, tc.author_id, tc.created_at, tc.updated_at, u.name, u.image`

func scanComment(scanner interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := scanner.Scan(&c.ID, &c.Content, &c.TaskID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt, &c.Author.Name, &c.Author.Image)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	return &c, nil
}

// listComments returns comments matching where (on unaliased task_comments
// columns), newest first. perTask > 0 keeps only that many per task.
func listComments(ctx context.Context, db *database.DB, where string, args []any, perTask int) ([]model.Comment, error) {
	q := `SELECT ` + commentCols + ` FROM task_comments tc JOIN users u ON u.id = tc.author_id
		WHERE tc.id IN (SELECT id FROM task_comments WHERE ` + where + `)
		ORDER BY tc.created_at DESC`
	if perTask > 0 {
		q = `SELECT ` + commentCols + ` FROM (
			SELECT task_comments.*, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY created_at DESC) AS rn
			FROM task_comments WHERE ` + where + `
		) tc JOIN users u ON u.id = tc.author_id
		WHERE tc.rn <= ` + fmt.Sprint(perTask) + `
		ORDER BY tc.created_at DESC`
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// Page returns one page of a task's comments, newest first, with the total.
func (s *CommentStore) Page(ctx context.Context, taskID string, page, limit int) ([]model.Comment, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_comments WHERE task_id = ?`, taskID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentCols+` FROM task_comments tc JOIN users u ON u.id = tc.author_id
		 WHERE tc.task_id = ? ORDER BY tc.created_at DESC LIMIT ? OFFSET ?`,
		taskID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("page comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, total, rows.Err()
}

func (s *CommentStore) Create(ctx context.Context, taskID, authorID, content string) (*model.Comment, error) {
	now := database.Now()
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_comments (id, content, task_id, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, content, taskID, authorID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return s.Get(ctx, taskID, id)
}

func (s *CommentStore) Get(ctx context.Context, taskID, id string) (*model.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentCols+` FROM task_comments tc JOIN users u ON u.id = tc.author_id
		 WHERE tc.id = ? AND tc.task_id = ?`,
		id, taskID,
	)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// UpdateByAuthor edits the comment only when authorID wrote it.
func (s *CommentStore) UpdateByAuthor(ctx context.Context, taskID, id, authorID, content string) (*model.Comment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE task_comments SET content = ?, updated_at = ? WHERE id = ? AND task_id = ? AND author_id = ?`,
		content, database.Now(), id, taskID, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, taskID, id)
}

func (s *CommentStore) DeleteByAuthor(ctx context.Context, taskID, id, authorID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM task_comments WHERE id = ? AND task_id = ? AND author_id = ?`,
		id, taskID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	return affected(res)
}
