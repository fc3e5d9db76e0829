package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

// ChecklistStore is keyed by task id. Callers verify task ownership first.
type ChecklistStore struct {
	db *database.DB
}

func NewChecklistStore(db *database.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

type ChecklistUpdate struct {
	Title     mo.Option[string]
	Completed mo.Option[bool]
	Position  mo.Option[int]
}

const checklistCols = `id, title, position, completed, task_id, created_at, updated_at`

func scanChecklistItem(scanner interface{ Scan(...any) error }) (*model.ChecklistItem, error) {
	var c model.ChecklistItem
	if err := scanner.Scan(&c.ID, &c.Title, &c.Position, &c.Completed, &c.TaskID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func listChecklist(ctx context.Context, db *database.DB, where string, args []any) ([]model.ChecklistItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+checklistCols+` FROM checklist_items WHERE `+where+` ORDER BY position ASC, created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	items := []model.ChecklistItem{}
	for rows.Next() {
		c, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (s *ChecklistStore) List(ctx context.Context, taskID string) ([]model.ChecklistItem, error) {
	return listChecklist(ctx, s.db, `task_id = ?`, []any{taskID})
}

// NextPosition is one past the highest position in the task, or 0 when
// the task has no items.
func (s *ChecklistStore) NextPosition(ctx context.Context, taskID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM checklist_items WHERE task_id = ?`, taskID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max checklist position: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (s *ChecklistStore) Create(ctx context.Context, taskID, title string, position int) (*model.ChecklistItem, error) {
	now := database.Now()
	c := model.ChecklistItem{ID: newID(), Title: title, Position: position, TaskID: taskID, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_items (`+checklistCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Position, c.Completed, c.TaskID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checklist item: %w", err)
	}
	return &c, nil
}

func (s *ChecklistStore) Get(ctx context.Context, taskID, id string) (*model.ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checklistCols+` FROM checklist_items WHERE id = ? AND task_id = ?`, id, taskID,
	)
	c, err := scanChecklistItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}
	return c, nil
}

func (s *ChecklistStore) Update(ctx context.Context, taskID, id string, u ChecklistUpdate) (*model.ChecklistItem, error) {
	var set setClause
	if v, ok := u.Title.Get(); ok {
		set.add("title", v)
	}
	if v, ok := u.Completed.Get(); ok {
		set.add("completed", v)
	}
	if v, ok := u.Position.Get(); ok {
		set.add("position", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE checklist_items SET `+set.String()+` WHERE id = ? AND task_id = ?`,
		append(set.args, id, taskID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update checklist item: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, taskID, id)
}

func (s *ChecklistStore) Delete(ctx context.Context, taskID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checklist_items WHERE id = ? AND task_id = ?`, id, taskID,
	)
	if err != nil {
		return false, fmt.Errorf("delete checklist item: %w", err)
	}
	return affected(res)
}
