// Package store defines the backing-store contract of the relocation engine
// and ships the default in-memory implementation.
package store

import (
	"context"
	"errors"

	"github.com/tuanano/wms-web/internal/models"
)

// ErrClosed is returned by a store that has been closed.
var ErrClosed = errors.New("store closed")

// Store is the data source behind a relocation session. Implementations hand
// out copies; the engine never holds references into store-owned memory.
type Store interface {
	// Snapshot returns a copy of all locations and units.
	Snapshot(ctx context.Context) (*models.Snapshot, error)

	// Commit persists the outcome of one apply atomically.
	Commit(ctx context.Context, cs *Changeset) error

	// MoveLog returns the most recent relocation records, newest first.
	MoveLog(ctx context.Context, limit int) ([]*models.RelocationRecord, error)
}

// Changeset is everything a single apply changed.
type Changeset struct {
	// Units holds new or updated units in their post-move state.
	Units []*models.InventoryUnit

	// DeletedUnitIDs lists units merged away.
	DeletedUnitIDs []string

	// Locations holds every location whose load changed.
	Locations []*models.Location

	Moves []*models.RelocationRecord
}

// IsEmpty reports whether the changeset changes nothing.
func (c *Changeset) IsEmpty() bool {
	return len(c.Units) == 0 && len(c.DeletedUnitIDs) == 0 && len(c.Locations) == 0
}
