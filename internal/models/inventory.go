// Package models defines the inventory records the relocation engine works on:
// units, locations, locators, move requests and validation outcomes.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TrackingType describes how a unit of stock is identified.
type TrackingType string

const (
	TrackingSKU    TrackingType = "SKU"
	TrackingBatch  TrackingType = "BATCH"
	TrackingSerial TrackingType = "SERIAL"
)

func (t TrackingType) String() string {
	return string(t)
}

// IsValid reports whether t is a known tracking type.
func (t TrackingType) IsValid() bool {
	switch t {
	case TrackingSKU, TrackingBatch, TrackingSerial:
		return true
	}
	return false
}

// InventoryUnit is one trackable quantity of stock at one place.
type InventoryUnit struct {
	ID                string       `toml:"id" validate:"required"`
	TrackingType      TrackingType `toml:"tracking_type" validate:"required,oneof=SKU BATCH SERIAL"`
	ProductCode       string       `toml:"product_code" validate:"required"`
	ProductName       string       `toml:"product_name"`
	Quantity          int          `toml:"quantity" validate:"gte=1"`
	TrackingValue     string       `toml:"tracking_value" validate:"required_unless=TrackingType SKU"` // IMEI, serial or lot code
	CurrentLocationID string       `toml:"location_id" validate:"required"`
	PalletID          string       `toml:"pallet_id,omitempty"`

	// SourceUnitID is set on a unit split off a batch by a partial pick.
	SourceUnitID string `toml:"source_unit_id,omitempty"`
}

// Clone returns a copy of the unit that shares no state with u.
func (u *InventoryUnit) Clone() *InventoryUnit {
	c := *u
	return &c
}

// OnPallet reports whether the unit sits on a pallet.
func (u *InventoryUnit) OnPallet() bool {
	return u.PalletID != ""
}

// IsSplit reports whether the unit was split off another unit.
func (u *InventoryUnit) IsSplit() bool {
	return u.SourceUnitID != ""
}

// Divisible reports whether part of the unit's quantity can be moved on its own.
func (u *InventoryUnit) Divisible() bool {
	return u.TrackingType != TrackingSerial && u.Quantity > 1
}

// Locator returns where the unit currently is.
func (u *InventoryUnit) Locator() Locator {
	return Locator{LocationID: u.CurrentLocationID, PalletID: u.PalletID}
}

// Location is a storage slot with a capacity and a mixing policy.
type Location struct {
	ID            string `toml:"id" validate:"required"`
	Zone          string `toml:"zone" validate:"required"`
	Capacity      int    `toml:"capacity" validate:"gte=0"`
	CurrentLoad   int    `toml:"current_load" validate:"gte=0,ltefield=Capacity"`
	AllowsMixing  bool   `toml:"allows_mixing"`
	IsColdStorage bool   `toml:"cold_storage"`
}

// Clone returns a copy of the location.
func (l *Location) Clone() *Location {
	c := *l
	return &c
}

// FreeCapacity returns how many more units the location can take.
func (l *Location) FreeCapacity() int {
	free := l.Capacity - l.CurrentLoad
	if free < 0 {
		return 0
	}
	return free
}

// IsEmpty reports whether the location holds no stock.
func (l *Location) IsEmpty() bool {
	return l.CurrentLoad == 0
}

// Utilization returns the fill ratio in [0, 1]. A zero-capacity slot counts as full.
func (l *Location) Utilization() decimal.Decimal {
	if l.Capacity <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(l.CurrentLoad)).Div(decimal.NewFromInt(int64(l.Capacity)))
}

// UtilizationAfter returns the fill ratio the location would have after
// receiving qty more units.
func (l *Location) UtilizationAfter(qty int) decimal.Decimal {
	if l.Capacity <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(l.CurrentLoad + qty)).Div(decimal.NewFromInt(int64(l.Capacity)))
}

// UtilizationPercent formats the fill ratio for display, e.g. "57%".
func (l *Location) UtilizationPercent() string {
	return l.Utilization().Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// Snapshot is a complete copy of warehouse inventory.
type Snapshot struct {
	Locations []*Location      `toml:"locations" validate:"dive"`
	Units     []*InventoryUnit `toml:"units" validate:"dive"`
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Locations: make([]*Location, len(s.Locations)),
		Units:     make([]*InventoryUnit, len(s.Units)),
	}
	for i, l := range s.Locations {
		out.Locations[i] = l.Clone()
	}
	for i, u := range s.Units {
		out.Units[i] = u.Clone()
	}
	return out
}

// NormalizeID canonicalizes a user-entered identifier for matching.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
