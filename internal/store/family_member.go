package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

// FamilyMemberStore is keyed by family id. Callers verify that the user
// owns the family first.
type FamilyMemberStore struct {
	db *database.DB
}

func NewFamilyMemberStore(db *database.DB) *FamilyMemberStore {
	return &FamilyMemberStore{db: db}
}

const familyMemberCols = `id, name, family_id, created_at, updated_at`

func scanFamilyMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	if err := scanner.Scan(&m.ID, &m.Name, &m.FamilyID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanFamilyMembers(rows *sql.Rows) ([]model.FamilyMember, error) {
	members := []model.FamilyMember{}
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) Create(ctx context.Context, familyID, name string) (*model.FamilyMember, error) {
	now := database.Now()
	m := model.FamilyMember{ID: newID(), Name: name, FamilyID: familyID, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_members (`+familyMemberCols+`) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.FamilyID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family member: %w", err)
	}
	return &m, nil
}

func (s *FamilyMemberStore) List(ctx context.Context, familyID string) ([]model.FamilyMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+familyMemberCols+` FROM family_members WHERE family_id = ? ORDER BY name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()
	return scanFamilyMembers(rows)
}

func (s *FamilyMemberStore) Get(ctx context.Context, familyID, id string) (*model.FamilyMember, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+familyMemberCols+` FROM family_members WHERE id = ? AND family_id = ?`,
		id, familyID,
	)
	m, err := scanFamilyMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family member: %w", err)
	}
	return m, nil
}

// Update renames a member. It returns nil when the member is not in the family.
func (s *FamilyMemberStore) Update(ctx context.Context, familyID, id, name string) (*model.FamilyMember, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE family_members SET name = ?, updated_at = ? WHERE id = ? AND family_id = ?`,
		name, database.Now(), id, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("update family member: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, familyID, id)
}

func (s *FamilyMemberStore) Delete(ctx context.Context, familyID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE id = ? AND family_id = ?`, id, familyID,
	)
	if err != nil {
		return false, fmt.Errorf("delete family member: %w", err)
	}
	return affected(res)
}
