package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tuanano/wms-web/internal/models"
)

// UnitRepository handles inventory unit data access.
type UnitRepository struct {
	db *sql.DB
}

// NewUnitRepository creates a new unit repository.
func NewUnitRepository(db *sql.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

const unitColumns = `id, tracking_type, product_code, product_name, quantity,
	tracking_value, location_id, pallet_id, source_unit_id`

// Save inserts a unit or updates it in place. New units are appended to the
// discovery order; existing units keep their position.
func (r *UnitRepository) Save(ctx context.Context, tx *sql.Tx, unit *models.InventoryUnit) error {
	query := `
		INSERT INTO inventory_units (
			id, tracking_type, product_code, product_name, quantity,
			tracking_value, location_id, pallet_id, source_unit_id, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM inventory_units))
		ON CONFLICT(id) DO UPDATE SET
			tracking_type = excluded.tracking_type,
			product_code = excluded.product_code,
			product_name = excluded.product_name,
			quantity = excluded.quantity,
			tracking_value = excluded.tracking_value,
			location_id = excluded.location_id,
			pallet_id = excluded.pallet_id,
			source_unit_id = excluded.source_unit_id`

	_, err := execWith(r.db, tx).ExecContext(ctx, query,
		unit.ID,
		string(unit.TrackingType),
		unit.ProductCode,
		unit.ProductName,
		unit.Quantity,
		unit.TrackingValue,
		unit.CurrentLocationID,
		nullableString(unit.PalletID),
		nullableString(unit.SourceUnitID),
	)
	if err != nil {
		return fmt.Errorf("saving unit %s: %w", unit.ID, err)
	}
	return nil
}

// Delete removes a unit.
func (r *UnitRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := execWith(r.db, tx).ExecContext(ctx, `DELETE FROM inventory_units WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting unit %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every unit.
func (r *UnitRepository) DeleteAll(ctx context.Context, tx *sql.Tx) error {
	if _, err := execWith(r.db, tx).ExecContext(ctx, `DELETE FROM inventory_units`); err != nil {
		return fmt.Errorf("deleting units: %w", err)
	}
	return nil
}

// GetByID retrieves a unit.
func (r *UnitRepository) GetByID(ctx context.Context, id string) (*models.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM inventory_units WHERE id = ?`

	unit, err := scanUnit(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	return unit, err
}

// List returns all units in discovery order.
func (r *UnitRepository) List(ctx context.Context) ([]*models.InventoryUnit, error) {
	return r.query(ctx, `SELECT `+unitColumns+` FROM inventory_units ORDER BY position`)
}

// ListByLocation returns the units at a location, ignoring case.
func (r *UnitRepository) ListByLocation(ctx context.Context, locationID string) ([]*models.InventoryUnit, error) {
	return r.query(ctx,
		`SELECT `+unitColumns+` FROM inventory_units WHERE location_id = ? ORDER BY position`,
		locationID)
}

// ListByPallet returns a pallet's member units, ignoring case.
func (r *UnitRepository) ListByPallet(ctx context.Context, palletID string) ([]*models.InventoryUnit, error) {
	return r.query(ctx,
		`SELECT `+unitColumns+` FROM inventory_units WHERE pallet_id = ? ORDER BY position`,
		palletID)
}

func (r *UnitRepository) query(ctx context.Context, query string, args ...any) ([]*models.InventoryUnit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	defer rows.Close()

	var out []*models.InventoryUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating units: %w", err)
	}
	return out, nil
}

func scanUnit(row rowScanner) (*models.InventoryUnit, error) {
	var unit models.InventoryUnit
	var palletID, sourceID sql.NullString

	err := row.Scan(
		&unit.ID,
		&unit.TrackingType,
		&unit.ProductCode,
		&unit.ProductName,
		&unit.Quantity,
		&unit.TrackingValue,
		&unit.CurrentLocationID,
		&palletID,
		&sourceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning unit: %w", err)
	}

	unit.PalletID = palletID.String
	unit.SourceUnitID = sourceID.String
	return &unit, nil
}
