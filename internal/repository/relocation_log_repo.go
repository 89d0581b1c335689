package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tuanano/wms-web/internal/models"
)

// RelocationLogRepository handles the audit trail of applied moves.
type RelocationLogRepository struct {
	db *sql.DB
}

// NewRelocationLogRepository creates a new relocation log repository.
func NewRelocationLogRepository(db *sql.DB) *RelocationLogRepository {
	return &RelocationLogRepository{db: db}
}

const logColumns = `id, batch_id, unit_id, product_code, quantity,
	from_location_id, from_pallet_id, to_location_id, to_pallet_id, applied_at`

// Create appends a record.
func (r *RelocationLogRepository) Create(ctx context.Context, tx *sql.Tx, rec *models.RelocationRecord) error {
	query := `INSERT INTO relocation_log (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := execWith(r.db, tx).ExecContext(ctx, query,
		rec.ID,
		rec.BatchID,
		rec.UnitID,
		rec.ProductCode,
		rec.Quantity,
		rec.FromLocationID,
		nullableString(rec.FromPalletID),
		rec.ToLocationID,
		nullableString(rec.ToPalletID),
		rec.AppliedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting relocation record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (r *RelocationLogRepository) Recent(ctx context.Context, limit int) ([]*models.RelocationRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, `SELECT `+logColumns+` FROM relocation_log ORDER BY rowid DESC LIMIT ?`, limit)
}

// ListByBatch returns a batch's records in the order they were applied.
func (r *RelocationLogRepository) ListByBatch(ctx context.Context, batchID string) ([]*models.RelocationRecord, error) {
	return r.query(ctx, `SELECT `+logColumns+` FROM relocation_log WHERE batch_id = ? ORDER BY rowid`, batchID)
}

func (r *RelocationLogRepository) query(ctx context.Context, query string, args ...any) ([]*models.RelocationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relocation log: %w", err)
	}
	defer rows.Close()

	var out []*models.RelocationRecord
	for rows.Next() {
		var rec models.RelocationRecord
		var fromPallet, toPallet sql.NullString
		var appliedStr string

		if err := rows.Scan(
			&rec.ID,
			&rec.BatchID,
			&rec.UnitID,
			&rec.ProductCode,
			&rec.Quantity,
			&rec.FromLocationID,
			&fromPallet,
			&rec.ToLocationID,
			&toPallet,
			&appliedStr,
		); err != nil {
			return nil, fmt.Errorf("scanning relocation record: %w", err)
		}

		rec.FromPalletID = fromPallet.String
		rec.ToPalletID = toPallet.String
		rec.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedStr)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relocation log: %w", err)
	}
	return out, nil
}
