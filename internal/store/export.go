package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

type FamilyExportStore struct {
	db *database.DB
}

func NewFamilyExportStore(db *database.DB) *FamilyExportStore {
	return &FamilyExportStore{db: db}
}

const exportCols = `id, family_id, object_key, size_bytes, status, error_message, created_at, updated_at`

func scanExport(scanner interface{ Scan(...any) error }) (*model.FamilyExport, error) {
	var e model.FamilyExport
	err := scanner.Scan(&e.ID, &e.FamilyID, &e.ObjectKey, &e.SizeBytes, &e.Status, &e.ErrorMessage, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create records a pending export for familyID.
func (s *FamilyExportStore) Create(ctx context.Context, familyID, objectKey string) (*model.FamilyExport, error) {
	now := database.Now()
	e := model.FamilyExport{
		ID:        newID(),
		FamilyID:  familyID,
		ObjectKey: objectKey,
		Status:    model.ExportStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_exports (`+exportCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FamilyID, e.ObjectKey, e.SizeBytes, e.Status, e.ErrorMessage, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family export: %w", err)
	}
	return &e, nil
}

func (s *FamilyExportStore) MarkUploaded(ctx context.Context, id string, size int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE family_exports SET status = ?, size_bytes = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		model.ExportStatusUploaded, size, database.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("mark export uploaded: %w", err)
	}
	return nil
}

func (s *FamilyExportStore) MarkFailed(ctx context.Context, id, msg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE family_exports SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		model.ExportStatusFailed, msg, database.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("mark export failed: %w", err)
	}
	return nil
}

func (s *FamilyExportStore) Get(ctx context.Context, familyID, id string) (*model.FamilyExport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+exportCols+` FROM family_exports WHERE id = ? AND family_id = ?`, id, familyID,
	)
	e, err := scanExport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family export: %w", err)
	}
	return e, nil
}

// ListByFamily returns a family's exports, newest first.
func (s *FamilyExportStore) ListByFamily(ctx context.Context, familyID string) ([]model.FamilyExport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+exportCols+` FROM family_exports WHERE family_id = ? ORDER BY created_at DESC`, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family exports: %w", err)
	}
	defer rows.Close()

	exports := []model.FamilyExport{}
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family export: %w", err)
		}
		exports = append(exports, *e)
	}
	return exports, rows.Err()
}
