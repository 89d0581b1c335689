// Package relocation implements the move engine: identifier resolution,
// product-line aggregation, destination validation and the two-phase
// relocation applier, behind a per-session Service.
package relocation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
	"github.com/tuanano/wms-web/internal/util"
)

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	PalletPrefix string

	// ApplyLatency delays every apply, standing in for a remote backend.
	ApplyLatency time.Duration

	IDs     IDSource
	SplitID func(sourceID string) string
	Now     func() time.Time
	Logger  *slog.Logger
}

// Service is one relocation session over a backing store. Reads may run
// concurrently; applies are exclusive and at most one is in flight.
type Service struct {
	store store.Store
	opts  Options

	mu       sync.RWMutex
	dir      *Directory
	applying atomic.Bool
}

// NewService creates a session. Call Load before use.
func NewService(st store.Store, opts Options) *Service {
	if opts.PalletPrefix == "" {
		opts.PalletPrefix = models.DefaultPalletPrefix
	}
	if opts.IDs == nil {
		opts.IDs = util.NewIDGenerator()
	}
	if opts.SplitID == nil {
		ids := opts.IDs
		opts.SplitID = func(sourceID string) string {
			return sourceID + "-" + util.ShortID(ids.NewID())
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{store: st, opts: opts}
}

// ============================================================================
// LOADING
// ============================================================================

// Load (re)builds the directory from the store.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading inventory snapshot: %w", err)
	}

	dir := NewDirectory(snap, s.opts.PalletPrefix)

	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()

	s.opts.Logger.Info("inventory loaded",
		"locations", len(snap.Locations),
		"units", len(snap.Units),
	)
	return nil
}

// read runs fn under the read lock.
func (s *Service) read(fn func(d *Directory)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dir == nil {
		return ErrNotLoaded
	}
	fn(s.dir)
	return nil
}

// ============================================================================
// QUERIES
// ============================================================================

// FetchUnitsAtLocation returns the units at a location, pallets included.
func (s *Service) FetchUnitsAtLocation(ctx context.Context, locationID string) ([]*models.InventoryUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var units []*models.InventoryUnit
	var found bool
	err := s.read(func(d *Directory) {
		_, found = d.GetLocation(locationID)
		units = d.UnitsAt(locationID)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("location %s: %w", models.NormalizeID(locationID), ErrLocationNotFound)
	}
	return units, nil
}

// ResolveIdentifier classifies a scanned or typed identifier.
func (s *Service) ResolveIdentifier(ctx context.Context, identifier string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	var res Resolution
	err := s.read(func(d *Directory) { res = Resolve(d, identifier) })
	return res, err
}

// GetPalletLocation returns where a pallet currently is.
func (s *Service) GetPalletLocation(palletID string) (string, bool) {
	var loc string
	var ok bool
	_ = s.read(func(d *Directory) { loc, ok = d.ResolvePalletLocation(palletID) })
	return loc, ok
}

// GetLocation returns a copy of a location record.
func (s *Service) GetLocation(locationID string) (*models.Location, bool) {
	var loc *models.Location
	var ok bool
	_ = s.read(func(d *Directory) { loc, ok = d.GetLocation(locationID) })
	return loc, ok
}

// Locations returns the location catalog.
func (s *Service) Locations() []*models.Location {
	var out []*models.Location
	_ = s.read(func(d *Directory) { out = d.Locations() })
	return out
}

// Unit returns a copy of a unit.
func (s *Service) Unit(id string) (*models.InventoryUnit, bool) {
	var u *models.InventoryUnit
	var ok bool
	_ = s.read(func(d *Directory) { u, ok = d.Unit(id) })
	return u, ok
}

// AddUnits merges scanned units into lines and bounds partial picks by the
// stock they draw from.
func (s *Service) AddUnits(lines []ProductLine, units []*models.InventoryUnit) []ProductLine {
	out := AddUnits(lines, units)
	_ = s.read(func(d *Directory) { out = CapPicks(d, out) })
	return out
}

// Snapshot returns a copy of the session's current inventory.
func (s *Service) Snapshot() (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := s.read(func(d *Directory) { snap = d.Snapshot() })
	return snap, err
}

// MoveLog returns recent relocation records from the store.
func (s *Service) MoveLog(ctx context.Context, limit int) ([]*models.RelocationRecord, error) {
	return s.store.MoveLog(ctx, limit)
}

// PalletPrefix returns the prefix marking pallet identifiers.
func (s *Service) PalletPrefix() string {
	return s.opts.PalletPrefix
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidateMove checks one subject against a destination.
func (s *Service) ValidateMove(subject MoveSubject, destination string) models.ValidationOutcome {
	var o models.ValidationOutcome
	if err := s.read(func(d *Directory) { o = ValidateMove(d, subject, destination) }); err != nil {
		return notLoadedOutcome()
	}
	return o
}

// ValidateLine checks a product line against a destination.
func (s *Service) ValidateLine(line ProductLine, destination string) models.ValidationOutcome {
	var o models.ValidationOutcome
	if err := s.read(func(d *Directory) { o = ValidateLine(d, line, destination) }); err != nil {
		return notLoadedOutcome()
	}
	return o
}

// Suggest proposes destinations for subject, skipping exclude.
func (s *Service) Suggest(subject MoveSubject, exclude []string, limit int) []Suggestion {
	var out []Suggestion
	_ = s.read(func(d *Directory) { out = Suggest(d, subject, exclude, limit) })
	return out
}

// BuildBatch validates drafted lines into a batch.
func (s *Service) BuildBatch(lines []ProductLine, drafts Drafts) (*Batch, error) {
	var b *Batch
	err := s.read(func(d *Directory) { b = BuildBatch(d, lines, drafts) })
	return b, err
}

func notLoadedOutcome() models.ValidationOutcome {
	return models.ValidationOutcome{
		Severity:     models.SeverityError,
		Reason:       models.ReasonUnavailable,
		Message:      ErrNotLoaded.Error(),
		ShortMessage: "Not loaded",
	}
}

// ============================================================================
// APPLY
// ============================================================================

// ApplyMoves relocates units. Payloads that cannot be carried out are
// skipped and reported; the rest are committed together. Once issued an
// apply runs to completion: cancelling ctx does not abort it.
func (s *Service) ApplyMoves(ctx context.Context, payloads []models.MoveRequest) (*ApplyResult, error) {
	if !s.applying.CompareAndSwap(false, true) {
		return nil, ErrApplyInProgress
	}
	defer s.applying.Store(false)

	ctx = context.WithoutCancel(ctx)
	if s.opts.ApplyLatency > 0 {
		time.Sleep(s.opts.ApplyLatency)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == nil {
		return nil, ErrNotLoaded
	}

	a := &applier{
		dir:     s.dir,
		store:   s.store,
		ids:     s.opts.IDs,
		splitID: s.opts.SplitID,
		now:     s.opts.Now,
		logger:  s.opts.Logger,
	}
	return a.apply(ctx, payloads)
}

// ApplyBatch applies a built batch. A batch with warnings must have been
// confirmed first.
func (s *Service) ApplyBatch(ctx context.Context, b *Batch) (*ApplyResult, error) {
	if b == nil || b.IsEmpty() {
		return nil, ErrNothingToApply
	}
	if !b.Confirmed() {
		return nil, ErrConfirmationRequired
	}
	return s.ApplyMoves(ctx, b.Requests)
}

// Undo reverts a previous result by replaying its inverse.
func (s *Service) Undo(ctx context.Context, result *ApplyResult) (*ApplyResult, error) {
	if result == nil || len(result.Applied) == 0 {
		return nil, ErrNothingToApply
	}
	return s.ApplyMoves(ctx, result.Undo())
}

// Applying reports whether an apply is in flight.
func (s *Service) Applying() bool {
	return s.applying.Load()
}
