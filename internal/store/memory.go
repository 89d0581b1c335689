package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/tuanano/wms-web/internal/models"
)

// MemoryStore keeps inventory in process memory. It is the default backing
// store; construct one per session so tests get independent instances.
type MemoryStore struct {
	mu sync.RWMutex

	locations     map[string]*models.Location
	locationOrder []string
	units         map[string]*models.InventoryUnit
	unitOrder     []string
	moves         []*models.RelocationRecord
	closed        bool
}

// NewMemoryStore creates a store seeded with a copy of snap. A nil snapshot
// yields an empty store.
func NewMemoryStore(snap *models.Snapshot) *MemoryStore {
	s := &MemoryStore{
		locations: make(map[string]*models.Location),
		units:     make(map[string]*models.InventoryUnit),
	}
	if snap == nil {
		return s
	}

	for _, l := range snap.Locations {
		key := models.NormalizeID(l.ID)
		if _, ok := s.locations[key]; !ok {
			s.locationOrder = append(s.locationOrder, key)
		}
		s.locations[key] = l.Clone()
	}
	for _, u := range snap.Units {
		if _, ok := s.units[u.ID]; !ok {
			s.unitOrder = append(s.unitOrder, u.ID)
		}
		s.units[u.ID] = u.Clone()
	}
	return s
}

// Snapshot returns a copy of the store contents in insertion order.
func (s *MemoryStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	snap := &models.Snapshot{
		Locations: make([]*models.Location, 0, len(s.locationOrder)),
		Units:     make([]*models.InventoryUnit, 0, len(s.unitOrder)),
	}
	for _, key := range s.locationOrder {
		snap.Locations = append(snap.Locations, s.locations[key].Clone())
	}
	for _, id := range s.unitOrder {
		snap.Units = append(snap.Units, s.units[id].Clone())
	}
	return snap, nil
}

// Commit applies a changeset. Every location it names must already exist.
func (s *MemoryStore) Commit(ctx context.Context, cs *Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	// Check everything before touching state so a bad changeset changes nothing
	for _, l := range cs.Locations {
		if _, ok := s.locations[models.NormalizeID(l.ID)]; !ok {
			return fmt.Errorf("committing load for location %s: not found", l.ID)
		}
	}

	for _, l := range cs.Locations {
		s.locations[models.NormalizeID(l.ID)] = l.Clone()
	}
	for _, u := range cs.Units {
		if _, ok := s.units[u.ID]; !ok {
			s.unitOrder = append(s.unitOrder, u.ID)
		}
		s.units[u.ID] = u.Clone()
	}
	if len(cs.DeletedUnitIDs) > 0 {
		deleted := make(map[string]bool, len(cs.DeletedUnitIDs))
		for _, id := range cs.DeletedUnitIDs {
			deleted[id] = true
			delete(s.units, id)
		}
		kept := s.unitOrder[:0]
		for _, id := range s.unitOrder {
			if !deleted[id] {
				kept = append(kept, id)
			}
		}
		s.unitOrder = kept
	}
	for _, m := range cs.Moves {
		rec := *m
		s.moves = append(s.moves, &rec)
	}
	return nil
}

// MoveLog returns up to limit records, newest first. A limit <= 0 returns all.
func (s *MemoryStore) MoveLog(ctx context.Context, limit int) ([]*models.RelocationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	n := len(s.moves)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*models.RelocationRecord, 0, n)
	for i := len(s.moves) - 1; i >= 0 && len(out) < n; i-- {
		rec := *s.moves[i]
		out = append(out, &rec)
	}
	return out, nil
}

// Close releases the store. Further calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
