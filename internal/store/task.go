package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

type TaskStore struct {
	db *database.DB
}

func NewTaskStore(db *database.DB) *TaskStore {
	return &TaskStore{db: db}
}

type TaskInput struct {
	Title       string
	Description *string
	Deadline    *time.Time
	FamilyID    string
}

type TaskUpdate struct {
	Title       mo.Option[string]
	Description mo.Option[*string]
	Deadline    mo.Option[*time.Time]
	Completed   mo.Option[bool]
}

// listCommentLimit is how many recent comments a task carries in lists.
const listCommentLimit = 5

const taskCols = `t.id, t.title, t.description, t.deadline, t.completed, t.family_id, t.user_id, t.created_at, t.updated_at`

// Incomplete first, then by deadline with undated tasks last, then newest.
const taskOrder = `t.completed ASC, t.deadline IS NULL, t.deadline ASC, t.created_at DESC`

func taskDest(t *model.Task) []any {
	return []any{&t.ID, &t.Title, &t.Description, &t.Deadline, &t.Completed, &t.FamilyID, &t.UserID, &t.CreatedAt, &t.UpdatedAt}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	if err := scanner.Scan(taskDest(&t)...); err != nil {
		return nil, err
	}
	return &t, nil
}

// listTasks returns plain tasks matching where, newest first.
func listTasks(ctx context.Context, db *database.DB, where string, args []any, limit int) ([]model.Task, error) {
	q := `SELECT ` + taskCols + ` FROM tasks t WHERE ` + where + ` ORDER BY t.created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// loadViews runs the task query for where and attaches family, counts,
// checklist and comments. commentLimit <= 0 attaches every comment.
func (s *TaskStore) loadViews(ctx context.Context, where string, args []any, commentLimit int) ([]model.TaskView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+`, f.name,
		   (SELECT COUNT(*) FROM checklist_items ci WHERE ci.task_id = t.id),
		   (SELECT COUNT(*) FROM task_comments tc WHERE tc.task_id = t.id),
		   (SELECT COUNT(*) FROM reminders r WHERE r.task_id = t.id),
		   (SELECT COUNT(*) FROM notifications n WHERE n.task_id = t.id)
		 FROM tasks t JOIN families f ON f.id = t.family_id
		 WHERE `+where+` ORDER BY `+taskOrder,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	views := []model.TaskView{}
	index := map[string]int{}
	for rows.Next() {
		var v model.TaskView
		dest := append(taskDest(&v.Task), &v.Family.Name,
			&v.Count.Checklist, &v.Count.Comments, &v.Count.Reminders, &v.Count.Notifications)
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan task: %w", err)
		}
		v.Family.ID = v.FamilyID
		v.Checklist = []model.ChecklistItem{}
		v.Comments = []model.Comment{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	rows.Close()
	if len(views) == 0 {
		return views, nil
	}

	scope := `task_id IN (SELECT t.id FROM tasks t WHERE ` + where + `)`

	items, err := listChecklist(ctx, s.db, scope, args)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.TaskID]; ok {
			views[i].Checklist = append(views[i].Checklist, it)
		}
	}

	comments, err := listComments(ctx, s.db, scope, args, commentLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if i, ok := index[c.TaskID]; ok {
			views[i].Comments = append(views[i].Comments, c)
		}
	}
	return views, nil
}

// List returns userID's tasks matching f.
func (s *TaskStore) List(ctx context.Context, userID string, f model.TaskFilter) ([]model.TaskView, error) {
	where := []string{"t.user_id = ?"}
	args := []any{userID}
	if f.FamilyID != "" {
		where = append(where, "t.family_id = ?")
		args = append(args, f.FamilyID)
	}
	if f.Completed != nil {
		where = append(where, "t.completed = ?")
		args = append(args, *f.Completed)
	}
	if f.DeadlineBefore != nil {
		where = append(where, "t.deadline <= ?")
		args = append(args, *f.DeadlineBefore)
	}
	return s.loadViews(ctx, strings.Join(where, " AND "), args, listCommentLimit)
}

func (s *TaskStore) getView(ctx context.Context, userID, id string, commentLimit int) (*model.TaskView, error) {
	views, err := s.loadViews(ctx, `t.id = ? AND t.user_id = ?`, []any{id, userID}, commentLimit)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, nil
	}
	return &views[0], nil
}

func (s *TaskStore) Create(ctx context.Context, userID string, in TaskInput) (*model.TaskView, error) {
	now := database.Now()
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, deadline, completed, family_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.Description, in.Deadline, false, in.FamilyID, userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.getView(ctx, userID, id, listCommentLimit)
}

func (s *TaskStore) GetOwned(ctx context.Context, userID, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskCols+` FROM tasks t WHERE t.id = ? AND t.user_id = ?`, id, userID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Get returns the task with all comments, reminders and 10 newest notifications.
func (s *TaskStore) Get(ctx context.Context, userID, id string) (*model.TaskDetail, error) {
	v, err := s.getView(ctx, userID, id, 0)
	if err != nil || v == nil {
		return nil, err
	}
	d := &model.TaskDetail{TaskView: *v}
	if d.Reminders, err = listReminders(ctx, s.db, `task_id = ?`, []any{id}); err != nil {
		return nil, err
	}
	if d.Notifications, err = listNotifications(ctx, s.db, `task_id = ?`, []any{id}, 10); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *TaskStore) Update(ctx context.Context, userID, id string, u TaskUpdate) (*model.TaskView, error) {
	var set setClause
	if v, ok := u.Title.Get(); ok {
		set.add("title", v)
	}
	if v, ok := u.Description.Get(); ok {
		set.add("description", v)
	}
	if v, ok := u.Deadline.Get(); ok {
		set.add("deadline", v)
	}
	if v, ok := u.Completed.Get(); ok {
		set.add("completed", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET `+set.String()+` WHERE id = ? AND user_id = ?`,
		append(set.args, id, userID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.getView(ctx, userID, id, 0)
}

func (s *TaskStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return affected(res)
}
