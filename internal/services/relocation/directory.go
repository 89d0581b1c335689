package relocation

import (
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
)

// Directory is the engine's read model of one inventory snapshot: the
// location catalog plus secondary indexes from pallet and location ids to
// member units. Lookups are case-insensitive.
//
// A Directory is not safe for concurrent use; Service serializes access.
type Directory struct {
	palletPrefix string

	units    []*models.InventoryUnit
	unitByID map[string]*models.InventoryUnit

	locations []*models.Location
	locByID   map[string]*models.Location

	pallets    map[string][]string
	atLocation map[string][]string
}

// NewDirectory indexes a copy of snap.
func NewDirectory(snap *models.Snapshot, palletPrefix string) *Directory {
	if palletPrefix == "" {
		palletPrefix = models.DefaultPalletPrefix
	}
	d := &Directory{
		palletPrefix: palletPrefix,
		unitByID:     make(map[string]*models.InventoryUnit, len(snap.Units)),
		locByID:      make(map[string]*models.Location, len(snap.Locations)),
	}

	for _, l := range snap.Locations {
		c := l.Clone()
		d.locations = append(d.locations, c)
		d.locByID[models.NormalizeID(c.ID)] = c
	}
	for _, u := range snap.Units {
		c := u.Clone()
		d.units = append(d.units, c)
		d.unitByID[c.ID] = c
	}
	d.reindex()
	return d
}

func (d *Directory) reindex() {
	d.pallets = make(map[string][]string)
	d.atLocation = make(map[string][]string)
	for _, u := range d.units {
		if u.PalletID != "" {
			key := models.NormalizeID(u.PalletID)
			d.pallets[key] = append(d.pallets[key], u.ID)
		}
		key := models.NormalizeID(u.CurrentLocationID)
		d.atLocation[key] = append(d.atLocation[key], u.ID)
	}
}

// PalletPrefix returns the prefix that marks pallet identifiers.
func (d *Directory) PalletPrefix() string {
	return d.palletPrefix
}

// IsPallet reports whether identifier has the pallet-id shape.
func (d *Directory) IsPallet(identifier string) bool {
	return models.IsPalletID(identifier, d.palletPrefix)
}

// ParseLocator classifies a typed destination.
func (d *Directory) ParseLocator(identifier string) models.Locator {
	return models.ParseLocator(identifier, d.palletPrefix)
}

// ResolvePalletLocation returns the location of the pallet's first member
// unit. A pallet without member units does not exist.
func (d *Directory) ResolvePalletLocation(palletID string) (string, bool) {
	ids := d.pallets[models.NormalizeID(palletID)]
	if len(ids) == 0 {
		return "", false
	}
	return d.unitByID[ids[0]].CurrentLocationID, true
}

// palletName returns the pallet id as its member units spell it.
func (d *Directory) palletName(palletID string) (string, bool) {
	ids := d.pallets[models.NormalizeID(palletID)]
	if len(ids) == 0 {
		return "", false
	}
	return d.unitByID[ids[0]].PalletID, true
}

// GetLocation returns a copy of the location record.
func (d *Directory) GetLocation(locationID string) (*models.Location, bool) {
	l := d.location(locationID)
	if l == nil {
		return nil, false
	}
	return l.Clone(), true
}

// Unit returns a copy of a unit by id.
func (d *Directory) Unit(id string) (*models.InventoryUnit, bool) {
	u, ok := d.unitByID[id]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

// UnitsAt returns copies of the units at a location, pallets included.
func (d *Directory) UnitsAt(locationID string) []*models.InventoryUnit {
	return d.cloneIDs(d.atLocation[models.NormalizeID(locationID)])
}

// PalletUnits returns copies of a pallet's member units.
func (d *Directory) PalletUnits(palletID string) []*models.InventoryUnit {
	return d.cloneIDs(d.pallets[models.NormalizeID(palletID)])
}

// Units returns copies of all units in discovery order.
func (d *Directory) Units() []*models.InventoryUnit {
	out := make([]*models.InventoryUnit, len(d.units))
	for i, u := range d.units {
		out[i] = u.Clone()
	}
	return out
}

// Locations returns copies of the catalog in its original order.
func (d *Directory) Locations() []*models.Location {
	out := make([]*models.Location, len(d.locations))
	for i, l := range d.locations {
		out[i] = l.Clone()
	}
	return out
}

// Snapshot returns a full copy of the directory state.
func (d *Directory) Snapshot() *models.Snapshot {
	return &models.Snapshot{Locations: d.Locations(), Units: d.Units()}
}

func (d *Directory) location(id string) *models.Location {
	return d.locByID[models.NormalizeID(id)]
}

func (d *Directory) unit(id string) *models.InventoryUnit {
	return d.unitByID[id]
}

// holdsOtherProduct reports whether any unit at the location has a product
// code other than productCode.
func (d *Directory) holdsOtherProduct(locationID, productCode string) bool {
	for _, id := range d.atLocation[models.NormalizeID(locationID)] {
		if d.unitByID[id].ProductCode != productCode {
			return true
		}
	}
	return false
}

// holdsOnly reports whether the location holds stock and all of it is productCode.
func (d *Directory) holdsOnly(locationID, productCode string) bool {
	ids := d.atLocation[models.NormalizeID(locationID)]
	return len(ids) > 0 && !d.holdsOtherProduct(locationID, productCode)
}

func (d *Directory) cloneIDs(ids []string) []*models.InventoryUnit {
	out := make([]*models.InventoryUnit, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.unitByID[id].Clone())
	}
	return out
}

// apply swaps a committed changeset into the directory and refreshes the
// indexes. Only the applier calls it, after the store accepted cs.
func (d *Directory) apply(cs *store.Changeset) {
	for _, l := range cs.Locations {
		if cur := d.location(l.ID); cur != nil {
			*cur = *l.Clone()
		}
	}

	for _, u := range cs.Units {
		if cur, ok := d.unitByID[u.ID]; ok {
			*cur = *u.Clone()
			continue
		}
		c := u.Clone()
		d.units = append(d.units, c)
		d.unitByID[c.ID] = c
	}

	if len(cs.DeletedUnitIDs) > 0 {
		deleted := make(map[string]bool, len(cs.DeletedUnitIDs))
		for _, id := range cs.DeletedUnitIDs {
			deleted[id] = true
			delete(d.unitByID, id)
		}
		kept := d.units[:0]
		for _, u := range d.units {
			if !deleted[u.ID] {
				kept = append(kept, u)
			}
		}
		d.units = kept
	}

	d.reindex()
}
