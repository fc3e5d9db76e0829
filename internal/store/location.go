package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/model"
	"github.com/samber/mo"
)

type LocationStore struct {
	db *database.DB
}

func NewLocationStore(db *database.DB) *LocationStore {
	return &LocationStore{db: db}
}

// LocationInput carries the fields of a new location.
type LocationInput struct {
	Label     string
	Address   *string
	Latitude  *float64
	Longitude *float64
	Notes     *string
}

// LocationUpdate holds a partial update. Some(nil) clears a nullable column.
type LocationUpdate struct {
	Label     mo.Option[string]
	Address   mo.Option[*string]
	Latitude  mo.Option[*float64]
	Longitude mo.Option[*float64]
	Notes     mo.Option[*string]
}

const locationCols = `l.id, l.label, l.address, l.latitude, l.longitude, l.notes, l.family_id, l.created_at, l.updated_at`

const locationEventCount = `(SELECT COUNT(*) FROM events ev WHERE ev.location_id = l.id)`

func scanLocation(scanner interface{ Scan(...any) error }, extra ...any) (*model.Location, error) {
	var l model.Location
	dest := append([]any{&l.ID, &l.Label, &l.Address, &l.Latitude, &l.Longitude, &l.Notes, &l.FamilyID, &l.CreatedAt, &l.UpdatedAt}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LocationStore) List(ctx context.Context, familyID string) ([]model.LocationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationCols+`, `+locationEventCount+`
		 FROM locations l WHERE l.family_id = ? ORDER BY l.label ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := []model.LocationSummary{}
	for rows.Next() {
		var count int
		l, err := scanLocation(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, model.LocationSummary{Location: *l, Count: model.EventsCount{Events: count}})
	}
	return locations, rows.Err()
}

func (s *LocationStore) listByFamily(ctx context.Context, familyID string) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+locationCols+` FROM locations l WHERE l.family_id = ? ORDER BY l.label ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list family locations: %w", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

func (s *LocationStore) Create(ctx context.Context, familyID string, in LocationInput) (*model.LocationSummary, error) {
	now := database.Now()
	l := model.Location{
		ID:        newID(),
		Label:     in.Label,
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Notes:     in.Notes,
		FamilyID:  familyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, label, address, latitude, longitude, notes, family_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Label, l.Address, l.Latitude, l.Longitude, l.Notes, l.FamilyID, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return &model.LocationSummary{Location: l}, nil
}

func (s *LocationStore) GetOwned(ctx context.Context, userID, id string) (*model.Location, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+locationCols+` FROM locations l WHERE l.id = ? AND l.`+ownedFamily,
		id, userID,
	)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// InFamily reports whether location id belongs to familyID.
func (s *LocationStore) InFamily(ctx context.Context, familyID, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locations WHERE id = ? AND family_id = ?`, id, familyID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check location family: %w", err)
	}
	return n > 0, nil
}

// Get returns the location with its family and first 10 events.
func (s *LocationStore) Get(ctx context.Context, userID, id string) (*model.LocationDetail, error) {
	var (
		d     model.LocationDetail
		count int
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+locationCols+`, f.id, f.name, `+locationEventCount+`
		 FROM locations l JOIN families f ON f.id = l.family_id
		 WHERE l.id = ? AND f.user_id = ?`,
		id, userID,
	)
	l, err := scanLocation(row, &d.Family.ID, &d.Family.Name, &count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	d.Location = *l
	d.Count.Events = count

	d.Events, err = listEvents(ctx, s.db, `e.location_id = ?`, []any{id}, 10)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *LocationStore) Update(ctx context.Context, userID, id string, u LocationUpdate) (*model.LocationDetail, error) {
	var set setClause
	if v, ok := u.Label.Get(); ok {
		set.add("label", v)
	}
	if v, ok := u.Address.Get(); ok {
		set.add("address", v)
	}
	if v, ok := u.Latitude.Get(); ok {
		set.add("latitude", v)
	}
	if v, ok := u.Longitude.Get(); ok {
		set.add("longitude", v)
	}
	if v, ok := u.Notes.Get(); ok {
		set.add("notes", v)
	}
	set.add("updated_at", database.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET `+set.String()+` WHERE id = ? AND `+ownedFamily,
		append(set.args, id, userID)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	if ok, err := affected(res); err != nil || !ok {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// DeleteUnused deletes an owned location that no event references.
func (s *LocationStore) DeleteUnused(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM locations WHERE id = ? AND `+ownedFamily+`
		 AND NOT EXISTS (SELECT 1 FROM events WHERE events.location_id = locations.id)`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete location: %w", err)
	}
	return affected(res)
}
