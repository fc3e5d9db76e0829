package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
)

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, name, email, image, phone_number, created_at, updated_at`

// Create inserts a user with a generated id.
func (s *UserStore) Create(ctx context.Context, email, name string) (*model.User, error) {
	return s.Upsert(ctx, model.User{ID: newID(), Email: email, Name: name})
}

// Upsert inserts the user or refreshes name, email and image for an
// existing id. A nil phone number keeps the stored one. Identities are
// owned by the auth provider; this keeps the local row in step with its
// claims.
func (s *UserStore) Upsert(ctx context.Context, u model.User) (*model.User, error) {
	now := database.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, image, phone_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email,
		   image = excluded.image,
		   phone_number = COALESCE(excluded.phone_number, users.phone_number),
		   updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Email, u.Image, u.PhoneNumber, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetByID(ctx, u.ID)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
