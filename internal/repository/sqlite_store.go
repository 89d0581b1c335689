package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tuanano/wms-web/internal/database"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
)

// SQLStore persists inventory in SQLite. Every commit is one transaction.
type SQLStore struct {
	db *database.DB

	locations *LocationRepository
	units     *UnitRepository
	log       *RelocationLogRepository

	// mu keeps snapshots from interleaving with commits
	mu sync.RWMutex
}

var _ store.Store = (*SQLStore)(nil)

// NewSQLStore creates a store over a migrated database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{
		db:        db,
		locations: NewLocationRepository(db.DB),
		units:     NewUnitRepository(db.DB),
		log:       NewRelocationLogRepository(db.DB),
	}
}

// Snapshot reads the whole catalog and every unit.
func (s *SQLStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db.IsClosed() {
		return nil, store.ErrClosed
	}

	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Locations: locations, Units: units}, nil
}

// Commit writes a changeset atomically. A location it names that does not
// exist, or a load beyond capacity, rolls the whole changeset back.
func (s *SQLStore) Commit(ctx context.Context, cs *store.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.IsClosed() {
		return store.ErrClosed
	}

	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, l := range cs.Locations {
			if err := s.locations.UpdateLoad(ctx, tx, l.ID, l.CurrentLoad); err != nil {
				return err
			}
		}
		for _, u := range cs.Units {
			if err := s.units.Save(ctx, tx, u); err != nil {
				return err
			}
		}
		for _, id := range cs.DeletedUnitIDs {
			if err := s.units.Delete(ctx, tx, id); err != nil {
				return err
			}
		}
		for _, m := range cs.Moves {
			if err := s.log.Create(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveLog returns recent relocation records, newest first.
func (s *SQLStore) MoveLog(ctx context.Context, limit int) ([]*models.RelocationRecord, error) {
	if s.db.IsClosed() {
		return nil, store.ErrClosed
	}
	return s.log.Recent(ctx, limit)
}

// IsEmpty reports whether the store holds no locations.
func (s *SQLStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.locations.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Import replaces all locations and units with snap after validating it.
// The relocation log is kept.
func (s *SQLStore) Import(ctx context.Context, snap *models.Snapshot) error {
	if err := store.ValidateSnapshot(snap); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.units.DeleteAll(ctx, tx); err != nil {
			return err
		}
		if err := s.locations.DeleteAll(ctx, tx); err != nil {
			return err
		}
		for i, l := range snap.Locations {
			if err := s.locations.Create(ctx, tx, l, i+1); err != nil {
				return err
			}
		}
		for _, u := range snap.Units {
			if err := s.units.Save(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}

	slog.Info("inventory imported",
		"locations", len(snap.Locations),
		"units", len(snap.Units),
	)
	return nil
}
