package testutil

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tuanano/wms-web/internal/database/seed"
	"github.com/tuanano/wms-web/internal/models"
)

// FixtureUnit creates a loose SKU unit of quantity 1 at A1-01.
func FixtureUnit(overrides ...func(*models.InventoryUnit)) *models.InventoryUnit {
	id := uuid.New().String()

	unit := &models.InventoryUnit{
		ID:                "U-" + strings.ToUpper(id[:8]),
		TrackingType:      models.TrackingSKU,
		ProductCode:       "WIDGET",
		ProductName:       "Test Widget",
		Quantity:          1,
		CurrentLocationID: "A1-01",
	}

	for _, override := range overrides {
		override(unit)
	}

	return unit
}

// FixtureSerialUnit creates a serial-tracked unit with the given serial number.
func FixtureSerialUnit(serial string, overrides ...func(*models.InventoryUnit)) *models.InventoryUnit {
	return FixtureUnit(append([]func(*models.InventoryUnit){
		func(u *models.InventoryUnit) {
			u.TrackingType = models.TrackingSerial
			u.TrackingValue = serial
			u.Quantity = 1
		},
	}, overrides...)...)
}

// FixtureBatchUnit creates a batch-tracked unit with the given lot and quantity.
func FixtureBatchUnit(lot string, qty int, overrides ...func(*models.InventoryUnit)) *models.InventoryUnit {
	return FixtureUnit(append([]func(*models.InventoryUnit){
		func(u *models.InventoryUnit) {
			u.TrackingType = models.TrackingBatch
			u.TrackingValue = lot
			u.Quantity = qty
		},
	}, overrides...)...)
}

// FixtureLocation creates an empty location that allows mixing.
func FixtureLocation(id string, overrides ...func(*models.Location)) *models.Location {
	zone := id
	if i := strings.IndexAny(id, "0123456789-"); i > 0 {
		zone = id[:i]
	}

	loc := &models.Location{
		ID:           id,
		Zone:         zone,
		Capacity:     100,
		AllowsMixing: true,
	}

	for _, override := range overrides {
		override(loc)
	}

	return loc
}

// At moves a fixture unit to a location.
func At(locationID string) func(*models.InventoryUnit) {
	return func(u *models.InventoryUnit) { u.CurrentLocationID = locationID }
}

// OnPallet puts a fixture unit on a pallet.
func OnPallet(palletID string) func(*models.InventoryUnit) {
	return func(u *models.InventoryUnit) { u.PalletID = palletID }
}

// Product sets a fixture unit's product code.
func Product(code string) func(*models.InventoryUnit) {
	return func(u *models.InventoryUnit) {
		u.ProductCode = code
		u.ProductName = code
	}
}

// NewSnapshot builds a snapshot whose location loads are derived from units,
// so it always satisfies the load invariant.
func NewSnapshot(locations []*models.Location, units []*models.InventoryUnit) *models.Snapshot {
	byID := make(map[string]*models.Location, len(locations))
	for _, l := range locations {
		l.CurrentLoad = 0
		byID[models.NormalizeID(l.ID)] = l
	}
	for _, u := range units {
		if l, ok := byID[models.NormalizeID(u.CurrentLocationID)]; ok {
			l.CurrentLoad += u.Quantity
		}
	}
	return &models.Snapshot{Locations: locations, Units: units}
}

// DemoSnapshot returns a fresh copy of the demo warehouse.
func DemoSnapshot() *models.Snapshot {
	return seed.Demo()
}

// FindUnit returns the unit with id from snap, or nil.
func FindUnit(snap *models.Snapshot, id string) *models.InventoryUnit {
	for _, u := range snap.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FindLocation returns the location with id from snap, or nil.
func FindLocation(snap *models.Snapshot, id string) *models.Location {
	for _, l := range snap.Locations {
		if strings.EqualFold(l.ID, id) {
			return l
		}
	}
	return nil
}
