package relocation

import (
	"fmt"
	"strings"

	"github.com/tuanano/wms-web/internal/models"
)

// ResolutionKind tells the caller what to do with a scanned identifier.
type ResolutionKind int

const (
	// NotFound means nothing matched.
	NotFound ResolutionKind = iota
	// ResolvedItems means Units can be added as they are.
	ResolvedItems
	// NeedsQuantity means Units are batch candidates and the operator must
	// pick a quantity from each before anything is added.
	NeedsQuantity
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedItems:
		return "resolved"
	case NeedsQuantity:
		return "needs_quantity"
	default:
		return "not_found"
	}
}

// Resolution is the result of resolving one identifier.
type Resolution struct {
	Kind       ResolutionKind
	Identifier string
	Units      []*models.InventoryUnit
}

// Resolve classifies an identifier and returns the matching units. First
// match wins: pallet, exact serial, batch lot, then product code.
func Resolve(d *Directory, identifier string) Resolution {
	id := models.NormalizeID(identifier)
	res := Resolution{Kind: NotFound, Identifier: id}
	if id == "" {
		return res
	}

	if d.IsPallet(id) {
		if units := d.PalletUnits(id); len(units) > 0 {
			res.Kind = ResolvedItems
			res.Units = units
			return res
		}
	}

	for _, u := range d.units {
		if u.TrackingType == models.TrackingSerial && models.NormalizeID(u.TrackingValue) == id {
			res.Kind = ResolvedItems
			res.Units = []*models.InventoryUnit{u.Clone()}
			return res
		}
	}

	var lots []*models.InventoryUnit
	for _, u := range d.units {
		if u.TrackingType == models.TrackingBatch && models.NormalizeID(u.TrackingValue) == id {
			lots = append(lots, u.Clone())
		}
	}
	if len(lots) > 0 {
		res.Kind = NeedsQuantity
		res.Units = lots
		return res
	}

	var products []*models.InventoryUnit
	allBatch := true
	for _, u := range d.units {
		if models.NormalizeID(u.ProductCode) == id {
			products = append(products, u.Clone())
			if u.TrackingType != models.TrackingBatch {
				allBatch = false
			}
		}
	}
	if len(products) > 0 {
		res.Units = products
		res.Kind = ResolvedItems
		if allBatch {
			res.Kind = NeedsQuantity
		}
	}

	return res
}

// PickQuantities turns the operator's per-unit quantities for NeedsQuantity
// candidates into units to add. picks is keyed by candidate unit id. A
// quantity equal to the stock takes the unit whole; a smaller one yields a
// pick unit that remembers its source; zero or absent entries are skipped.
func PickQuantities(candidates []*models.InventoryUnit, picks map[string]int) ([]*models.InventoryUnit, error) {
	var out []*models.InventoryUnit
	for _, c := range candidates {
		qty, ok := picks[c.ID]
		if !ok || qty == 0 {
			continue
		}
		if qty < 0 {
			return nil, fmt.Errorf("unit %s: %w", c.ID, ErrInvalidQuantity)
		}
		if qty > c.Quantity {
			return nil, fmt.Errorf("unit %s: picking %d of %d: %w", c.ID, qty, c.Quantity, ErrQuantityExceedsStock)
		}

		pick := c.Clone()
		if qty < c.Quantity {
			pick.ID = PickID(c.ID, qty)
			pick.Quantity = qty
			pick.SourceUnitID = c.ID
		}
		out = append(out, pick)
	}
	return out, nil
}

// PickID names a partial pick of a unit.
func PickID(unitID string, qty int) string {
	return fmt.Sprintf("%s-picked-%d", unitID, qty)
}

// IsPick reports whether u is a partial pick rather than a stock unit. Split
// units carry a SourceUnitID too but have their own ids.
func IsPick(u *models.InventoryUnit) bool {
	return u.SourceUnitID != "" && strings.HasPrefix(u.ID, u.SourceUnitID+"-picked-")
}

// CapPicks bounds every partial pick in lines by its source unit's current
// stock. A pick that reaches the stock becomes the whole unit. lines is not
// modified.
func CapPicks(d *Directory, lines []ProductLine) []ProductLine {
	out := copyLines(lines)
	for i := range out {
		changed := false
		for j, u := range out[i].Units {
			if !IsPick(u) {
				continue
			}
			src := d.unit(u.SourceUnitID)
			if src == nil || u.Quantity < src.Quantity {
				continue
			}
			out[i].Units[j] = src.Clone()
			changed = true
		}
		if changed {
			out[i] = recompute(out[i])
		}
	}
	return out
}
