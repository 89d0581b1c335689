package relocation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
)

// IDSource hands out unique identifiers.
type IDSource interface {
	NewID() string
}

// SkippedMove is a payload the applier could not carry out.
type SkippedMove struct {
	Request models.MoveRequest
	Err     error
}

// ApplyResult reports what one apply did. Applied holds fully resolved
// requests: their inverse undoes them exactly.
type ApplyResult struct {
	BatchID string
	Applied []models.MoveRequest
	Skipped []SkippedMove
}

// Undo returns the payload that reverts this result.
func (r *ApplyResult) Undo() []models.MoveRequest {
	return models.InvertAll(r.Applied)
}

// UnitsMoved sums the quantity of all applied moves.
func (r *ApplyResult) UnitsMoved() int {
	n := 0
	for _, m := range r.Applied {
		n += m.Quantity
	}
	return n
}

// Partial reports whether some payloads were skipped.
func (r *ApplyResult) Partial() bool {
	return len(r.Skipped) > 0
}

type moveKind int

const (
	moveWhole moveKind = iota
	moveSplit
	moveMerge
)

// plannedMove is one payload resolved against pre-move state.
type plannedMove struct {
	kind    moveKind
	unit    *models.InventoryUnit // pre-move, owned by the directory
	qty     int
	from    models.Locator
	to      models.Locator
	newID   string // split
	mergeTo string // merge
}

// applier executes one batch against a directory and its backing store.
type applier struct {
	dir     *Directory
	store   store.Store
	ids     IDSource
	splitID func(sourceID string) string
	now     func() time.Time
	logger  *slog.Logger

	loads   map[string]int
	touched []string
	taken   map[string]bool
}

// apply runs the two phases. Phase one resolves every payload and computes
// the new ledger from pre-move state; phase two derives the new unit states.
// The changeset is committed to the store before the directory changes, so
// a store failure leaves the engine untouched.
func (a *applier) apply(ctx context.Context, payloads []models.MoveRequest) (*ApplyResult, error) {
	a.loads = make(map[string]int)
	a.taken = make(map[string]bool)

	result := &ApplyResult{BatchID: a.ids.NewID()}

	// Phase 1: ledger
	var plans []*plannedMove
	for _, p := range payloads {
		plan, err := a.plan(p)
		if err != nil {
			a.logger.Warn("skipping relocation payload",
				"batch", result.BatchID,
				"unit", p.UnitID,
				"to", p.To.String(),
				"error", err,
			)
			result.Skipped = append(result.Skipped, SkippedMove{Request: p, Err: err})
			continue
		}
		plans = append(plans, plan)
	}
	a.settleMerges(plans)

	// Phase 2: units
	cs := &store.Changeset{}
	changed := make(map[string]*models.InventoryUnit)
	var order []string
	stage := func(u *models.InventoryUnit) {
		if _, ok := changed[u.ID]; !ok {
			order = append(order, u.ID)
		}
		changed[u.ID] = u
	}
	current := func(id string) *models.InventoryUnit {
		if u, ok := changed[id]; ok {
			return u
		}
		return a.dir.unit(id).Clone()
	}

	appliedAt := a.now().UTC()
	for _, plan := range plans {
		var applied models.MoveRequest
		switch plan.kind {
		case moveSplit:
			src := current(plan.unit.ID)
			src.Quantity -= plan.qty
			stage(src)

			part := plan.unit.Clone()
			part.ID = plan.newID
			part.Quantity = plan.qty
			part.SourceUnitID = plan.unit.ID
			part.CurrentLocationID = plan.to.LocationID
			part.PalletID = plan.to.PalletID
			stage(part)

			applied = models.MoveRequest{UnitID: plan.newID, SplitFrom: plan.unit.ID, From: plan.from, To: plan.to, Quantity: plan.qty}

		case moveMerge:
			dst := current(plan.mergeTo)
			dst.Quantity += plan.qty
			stage(dst)
			cs.DeletedUnitIDs = append(cs.DeletedUnitIDs, plan.unit.ID)

			applied = models.MoveRequest{UnitID: plan.unit.ID, MergeInto: plan.mergeTo, From: plan.from, To: plan.to, Quantity: plan.qty}

		default:
			u := current(plan.unit.ID)
			u.CurrentLocationID = plan.to.LocationID
			u.PalletID = plan.to.PalletID
			stage(u)

			applied = models.MoveRequest{UnitID: plan.unit.ID, From: plan.from, To: plan.to, Quantity: plan.qty}
		}

		result.Applied = append(result.Applied, applied)
		cs.Moves = append(cs.Moves, &models.RelocationRecord{
			ID:             a.ids.NewID(),
			BatchID:        result.BatchID,
			UnitID:         applied.UnitID,
			ProductCode:    plan.unit.ProductCode,
			Quantity:       plan.qty,
			FromLocationID: plan.from.LocationID,
			FromPalletID:   plan.from.PalletID,
			ToLocationID:   plan.to.LocationID,
			ToPalletID:     plan.to.PalletID,
			AppliedAt:      appliedAt,
		})
	}

	for _, id := range order {
		cs.Units = append(cs.Units, changed[id])
	}
	for _, key := range a.touched {
		loc := a.dir.location(key).Clone()
		loc.CurrentLoad = a.loads[key]
		cs.Locations = append(cs.Locations, loc)
	}

	if len(plans) == 0 {
		return result, nil
	}

	if err := a.store.Commit(ctx, cs); err != nil {
		return nil, fmt.Errorf("committing relocation batch %s: %w", result.BatchID, err)
	}
	a.dir.apply(cs)

	a.logger.Info("applied relocation batch",
		"batch", result.BatchID,
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
		"units", result.UnitsMoved(),
	)
	return result, nil
}

// plan resolves one payload and books its quantity on the running ledger.
func (a *applier) plan(p models.MoveRequest) (*plannedMove, error) {
	sourceID := p.UnitID
	kind := moveWhole
	newID := ""
	if p.SplitFrom != "" {
		sourceID = p.SplitFrom
		kind = moveSplit
		newID = p.UnitID
	}

	unit := a.dir.unit(sourceID)
	if unit == nil {
		return nil, fmt.Errorf("unit %s: %w", sourceID, ErrUnitNotFound)
	}
	if a.taken[unit.ID] {
		return nil, fmt.Errorf("unit %s: %w", unit.ID, ErrDuplicateUnit)
	}

	qty := p.Quantity
	switch {
	case qty < 0:
		return nil, fmt.Errorf("unit %s: %w", unit.ID, ErrInvalidQuantity)
	case qty > unit.Quantity:
		return nil, fmt.Errorf("unit %s: moving %d of %d: %w", unit.ID, qty, unit.Quantity, ErrQuantityExceedsStock)
	case qty == 0 || qty == unit.Quantity:
		qty = unit.Quantity
		kind = moveWhole
		newID = ""
	default:
		kind = moveSplit
	}

	if kind == moveSplit {
		if newID == "" {
			newID = a.freshSplitID(unit.ID)
		} else if a.dir.unit(newID) != nil || a.taken[newID] {
			return nil, fmt.Errorf("split unit %s: %w", newID, ErrDuplicateUnit)
		}
	}
	if kind == moveWhole && p.MergeInto != "" {
		kind = moveMerge
	}

	from := unit.Locator()
	if p.From.LocationID != "" && !strings.EqualFold(p.From.LocationID, from.LocationID) {
		a.logger.Warn("relocation payload has a stale source location",
			"unit", unit.ID,
			"payload_from", p.From.String(),
			"actual_from", from.String(),
		)
	}

	to, err := a.resolveTarget(p.To)
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", unit.ID, err)
	}

	fromKey := models.NormalizeID(from.LocationID)
	toKey := models.NormalizeID(to.LocationID)
	if fromKey != toKey {
		target := a.dir.location(toKey)
		if load := a.load(toKey); load+qty > target.Capacity {
			return nil, fmt.Errorf("unit %s: %d to %s with %d of %d used: %w",
				unit.ID, qty, target.ID, load, target.Capacity, ErrInsufficientCapacity)
		}
		a.book(fromKey, -qty)
		a.book(toKey, qty)
	}

	a.taken[unit.ID] = true
	if newID != "" {
		a.taken[newID] = true
	}
	return &plannedMove{
		kind:    kind,
		unit:    unit,
		qty:     qty,
		from:    from,
		to:      to,
		newID:   newID,
		mergeTo: p.MergeInto,
	}, nil
}

// resolveTarget turns a requested locator into a concrete one. A pallet
// resolves through its members' location before anything moves; when the
// pallet has no members left, its recorded location is used, which is how
// undo restores a pallet that a forward move emptied. Pallet ids keep the
// spelling of their member units.
func (a *applier) resolveTarget(to models.Locator) (models.Locator, error) {
	if to.IsZero() {
		return to, ErrTargetUnresolved
	}

	locationID := to.LocationID
	palletID := strings.TrimSpace(to.PalletID)
	if palletID != "" {
		resolved, ok := a.dir.ResolvePalletLocation(palletID)
		switch {
		case ok:
			palletID, _ = a.dir.palletName(palletID)
			if locationID != "" && !strings.EqualFold(locationID, resolved) {
				a.logger.Warn("pallet moved since the payload was built",
					"pallet", palletID,
					"payload_location", locationID,
					"pallet_location", resolved,
				)
			}
			locationID = resolved
		case locationID == "":
			return to, fmt.Errorf("pallet %s: %w: %w", palletID, ErrTargetUnresolved, ErrPalletNotFound)
		}
	}

	loc := a.dir.location(locationID)
	if loc == nil {
		return to, fmt.Errorf("location %s: %w: %w", locationID, ErrTargetUnresolved, ErrLocationNotFound)
	}
	return models.Locator{LocationID: loc.ID, PalletID: palletID}, nil
}

// settleMerges downgrades merges whose target cannot absorb the unit: the
// target is gone, moved in this batch, elsewhere, or a different lot.
func (a *applier) settleMerges(plans []*plannedMove) {
	for _, plan := range plans {
		if plan.kind != moveMerge {
			continue
		}
		target := a.dir.unit(plan.mergeTo)
		ok := target != nil &&
			!a.taken[target.ID] &&
			target.Locator().Equal(plan.to) &&
			target.ProductCode == plan.unit.ProductCode &&
			target.TrackingType == plan.unit.TrackingType &&
			target.TrackingValue == plan.unit.TrackingValue
		if !ok {
			a.logger.Debug("merge target unavailable, moving unit instead",
				"unit", plan.unit.ID,
				"merge_into", plan.mergeTo,
			)
			plan.kind = moveWhole
			plan.mergeTo = ""
		}
	}
}

func (a *applier) load(key string) int {
	if v, ok := a.loads[key]; ok {
		return v
	}
	if loc := a.dir.location(key); loc != nil {
		return loc.CurrentLoad
	}
	return 0
}

// book adjusts the running ledger for a location. Unknown locations are
// logged and ignored; loads never go below zero.
func (a *applier) book(key string, delta int) {
	loc := a.dir.location(key)
	if loc == nil {
		a.logger.Warn("ledger entry for unknown location ignored", "location", key, "delta", delta)
		return
	}
	if _, ok := a.loads[key]; !ok {
		a.loads[key] = loc.CurrentLoad
		a.touched = append(a.touched, key)
	}
	next := a.loads[key] + delta
	if next < 0 {
		a.logger.Warn("location load would go negative, clamping",
			"location", loc.ID,
			"load", a.loads[key],
			"delta", delta,
		)
		next = 0
	}
	a.loads[key] = next
}

func (a *applier) freshSplitID(sourceID string) string {
	for {
		id := a.splitID(sourceID)
		if a.dir.unit(id) == nil && !a.taken[id] {
			return id
		}
	}
}
