package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

type FamilyStore struct {
	db *database.DB
}

func NewFamilyStore(db *database.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

const familyCols = `f.id, f.name, f.user_id, f.created_at, f.updated_at`

const familyCounts = `
	(SELECT COUNT(*) FROM tasks t WHERE t.family_id = f.id),
	(SELECT COUNT(*) FROM events e WHERE e.family_id = f.id),
	(SELECT COUNT(*) FROM calendars c WHERE c.family_id = f.id),
	(SELECT COUNT(*) FROM locations l WHERE l.family_id = f.id)`

func scanFamilySummary(scanner interface{ Scan(...any) error }) (*model.FamilySummary, error) {
	var f model.FamilySummary
	err := scanner.Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt, &f.UpdatedAt,
		&f.Count.Tasks, &f.Count.Events, &f.Count.Calendars, &f.Count.Locations)
	if err != nil {
		return nil, err
	}
	f.Members = []model.FamilyMember{}
	return &f, nil
}

// List returns userID's families, newest first, with members and counts.
func (s *FamilyStore) List(ctx context.Context, userID string) ([]model.FamilySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+familyCols+`, `+familyCounts+`
		 FROM families f WHERE f.user_id = ? ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}

	families := []model.FamilySummary{}
	index := map[string]int{}
	for rows.Next() {
		f, err := scanFamilySummary(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan family: %w", err)
		}
		index[f.ID] = len(families)
		families = append(families, *f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list families: %w", err)
	}
	rows.Close()
	if len(families) == 0 {
		return families, nil
	}

	mrows, err := s.db.QueryContext(ctx,
		`SELECT `+familyMemberCols+` FROM family_members
		 WHERE family_id IN (SELECT id FROM families WHERE user_id = ?) ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer mrows.Close()
	members, err := scanFamilyMembers(mrows)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if i, ok := index[m.FamilyID]; ok {
			families[i].Members = append(families[i].Members, m)
		}
	}
	return families, nil
}

func (s *FamilyStore) Create(ctx context.Context, userID, name string) (*model.FamilySummary, error) {
	now := database.Now()
	f := model.FamilySummary{
		Family:  model.Family{ID: newID(), Name: name, UserID: userID, CreatedAt: now, UpdatedAt: now},
		Members: []model.FamilyMember{},
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO families (id, name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.UserID, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	return &f, nil
}

// Owned returns the bare family row if userID owns it, or nil.
func (s *FamilyStore) Owned(ctx context.Context, userID, id string) (*model.Family, error) {
	var f model.Family
	err := s.db.QueryRowContext(ctx,
		`SELECT `+familyCols+` FROM families f WHERE f.id = ? AND f.user_id = ?`, id, userID,
	).Scan(&f.ID, &f.Name, &f.UserID, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return &f, nil
}

func (s *FamilyStore) summary(ctx context.Context, userID, id string) (*model.FamilySummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+familyCols+`, `+familyCounts+` FROM families f WHERE f.id = ? AND f.user_id = ?`,
		id, userID,
	)
	f, err := scanFamilySummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	if f.Members, err = NewFamilyMemberStore(s.db).List(ctx, id); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the family with its 10 newest tasks, 10 earliest events,
// every calendar and location.
func (s *FamilyStore) Get(ctx context.Context, userID, id string) (*model.FamilyDetail, error) {
	sum, err := s.summary(ctx, userID, id)
	if err != nil || sum == nil {
		return nil, err
	}
	d := &model.FamilyDetail{Family: sum.Family, Members: sum.Members, Count: sum.Count}
	if d.Tasks, err = listTasks(ctx, s.db, `t.family_id = ?`, []any{id}, 10); err != nil {
		return nil, err
	}
	if d.Events, err = listEvents(ctx, s.db, `e.family_id = ?`, []any{id}, 10); err != nil {
		return nil, err
	}
	if d.Calendars, err = NewCalendarStore(s.db).listByFamily(ctx, id); err != nil {
		return nil, err
	}
	if d.Locations, err = NewLocationStore(s.db).listByFamily(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// Update renames the family. It returns nil when userID does not own it.
func (s *FamilyStore) Update(ctx context.Context, userID, id, name string) (*model.FamilySummary, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE families SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, database.Now(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update family: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.summary(ctx, userID, id)
}

// Delete removes the family and everything under it.
func (s *FamilyStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM families WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete family: %w", err)
	}
	return affected(res)
}

// Snapshot collects everything stored under a family for export. The
// caller has already checked ownership.
func (s *FamilyStore) Snapshot(ctx context.Context, f model.Family) (*model.FamilySnapshot, error) {
	snap := &model.FamilySnapshot{Family: f, ExportedAt: database.Now()}
	var err error
	if snap.Members, err = NewFamilyMemberStore(s.db).List(ctx, f.ID); err != nil {
		return nil, err
	}
	if snap.Calendars, err = NewCalendarStore(s.db).listByFamily(ctx, f.ID); err != nil {
		return nil, err
	}
	if snap.Locations, err = NewLocationStore(s.db).listByFamily(ctx, f.ID); err != nil {
		return nil, err
	}
	if snap.Events, err = listEvents(ctx, s.db, `e.family_id = ?`, []any{f.ID}, 0); err != nil {
		return nil, err
	}
	if snap.Tasks, err = listTasks(ctx, s.db, `t.family_id = ?`, []any{f.ID}, 0); err != nil {
		return nil, err
	}
	scope := `task_id IN (SELECT id FROM tasks WHERE family_id = ?)`
	if snap.Checklist, err = listChecklist(ctx, s.db, scope, []any{f.ID}); err != nil {
		return nil, err
	}
	if snap.Comments, err = listComments(ctx, s.db, scope, []any{f.ID}, 0); err != nil {
		return nil, err
	}
	return snap, nil
}
