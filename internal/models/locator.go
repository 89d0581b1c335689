package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPalletPrefix marks identifiers that name a pallet rather than a location.
const DefaultPalletPrefix = "PAL-"

// Locator addresses a place stock can be: a location, or a pallet at a location.
// PalletID may be set without LocationID when the pallet still has to be resolved.
type Locator struct {
	LocationID string
	PalletID   string
}

// IsPallet reports whether the locator targets a pallet.
func (l Locator) IsPallet() bool {
	return l.PalletID != ""
}

// IsZero reports whether the locator addresses nothing.
func (l Locator) IsZero() bool {
	return l.LocationID == "" && l.PalletID == ""
}

// Equal compares two locators case-insensitively.
func (l Locator) Equal(other Locator) bool {
	return strings.EqualFold(l.LocationID, other.LocationID) &&
		strings.EqualFold(l.PalletID, other.PalletID)
}

func (l Locator) String() string {
	switch {
	case l.PalletID != "" && l.LocationID != "":
		return fmt.Sprintf("%s@%s", l.PalletID, l.LocationID)
	case l.PalletID != "":
		return l.PalletID
	default:
		return l.LocationID
	}
}

// IsPalletID reports whether identifier has the pallet-id shape for prefix.
func IsPalletID(identifier, prefix string) bool {
	if prefix == "" {
		prefix = DefaultPalletPrefix
	}
	id := NormalizeID(identifier)
	return len(id) > len(prefix) && strings.HasPrefix(id, strings.ToUpper(prefix))
}

// ParseLocator classifies a typed destination. Pallet-shaped identifiers
// become unresolved pallet locators; anything else is a location id.
func ParseLocator(identifier, palletPrefix string) Locator {
	id := NormalizeID(identifier)
	if id == "" {
		return Locator{}
	}
	if IsPalletID(id, palletPrefix) {
		return Locator{PalletID: id}
	}
	return Locator{LocationID: id}
}

// MoveRequest asks the applier to relocate one unit.
//
// Quantity zero moves the whole unit. A smaller quantity on a batch unit
// splits it: SplitFrom names the unit the quantity comes from and UnitID the
// unit to create (generated when empty). MergeInto folds the moved unit back
// into another unit sharing its destination, which is how a split is undone.
type MoveRequest struct {
	UnitID    string
	From      Locator
	To        Locator
	Quantity  int
	SplitFrom string
	MergeInto string
}

// Inverse returns the request that undoes m once m has been applied.
func (m MoveRequest) Inverse() MoveRequest {
	return MoveRequest{
		UnitID:    m.UnitID,
		From:      m.To,
		To:        m.From,
		Quantity:  m.Quantity,
		SplitFrom: m.MergeInto,
		MergeInto: m.SplitFrom,
	}
}

func (m MoveRequest) String() string {
	switch {
	case m.SplitFrom != "":
		return fmt.Sprintf("%s (%d from %s): %s -> %s", m.UnitID, m.Quantity, m.SplitFrom, m.From, m.To)
	case m.MergeInto != "":
		return fmt.Sprintf("%s (%d into %s): %s -> %s", m.UnitID, m.Quantity, m.MergeInto, m.From, m.To)
	default:
		return fmt.Sprintf("%s: %s -> %s", m.UnitID, m.From, m.To)
	}
}

// InvertAll returns the undo payload for a list of applied requests, in
// reverse order so splits are merged back after later moves are reverted.
func InvertAll(applied []MoveRequest) []MoveRequest {
	out := make([]MoveRequest, 0, len(applied))
	for i := len(applied) - 1; i >= 0; i-- {
		out = append(out, applied[i].Inverse())
	}
	return out
}

// RelocationRecord is an audit entry for one applied move.
type RelocationRecord struct {
	ID             string
	BatchID        string
	UnitID         string
	ProductCode    string
	Quantity       int
	FromLocationID string
	FromPalletID   string
	ToLocationID   string
	ToPalletID     string
	AppliedAt      time.Time
}
