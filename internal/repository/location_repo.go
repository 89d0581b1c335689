package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tuanano/wms-web/internal/models"
)

// LocationRepository handles location data access.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

const locationColumns = `id, zone, capacity, current_load, allows_mixing, cold_storage`

// Create inserts a location at the given catalog position.
func (r *LocationRepository) Create(ctx context.Context, tx *sql.Tx, loc *models.Location, position int) error {
	query := `
		INSERT INTO locations (id, zone, capacity, current_load, allows_mixing, cold_storage, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := execWith(r.db, tx).ExecContext(ctx, query,
		loc.ID,
		loc.Zone,
		loc.Capacity,
		loc.CurrentLoad,
		loc.AllowsMixing,
		loc.IsColdStorage,
		position,
	)
	if err != nil {
		return fmt.Errorf("inserting location %s: %w", loc.ID, err)
	}
	return nil
}

// GetByID retrieves a location, ignoring case.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`

	loc, err := scanLocation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	return loc, err
}

// List returns the catalog in position order.
func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var out []*models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return out, nil
}

// UpdateLoad sets a location's current load.
func (r *LocationRepository) UpdateLoad(ctx context.Context, tx *sql.Tx, id string, load int) error {
	result, err := execWith(r.db, tx).ExecContext(ctx,
		`UPDATE locations SET current_load = ? WHERE id = ?`, load, id)
	if err != nil {
		return fmt.Errorf("updating load of %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every location. Units must be gone first.
func (r *LocationRepository) DeleteAll(ctx context.Context, tx *sql.Tx) error {
	if _, err := execWith(r.db, tx).ExecContext(ctx, `DELETE FROM locations`); err != nil {
		return fmt.Errorf("deleting locations: %w", err)
	}
	return nil
}

// Count returns the number of locations.
func (r *LocationRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting locations: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*models.Location, error) {
	var loc models.Location
	err := row.Scan(
		&loc.ID,
		&loc.Zone,
		&loc.Capacity,
		&loc.CurrentLoad,
		&loc.AllowsMixing,
		&loc.IsColdStorage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	return &loc, nil
}
