package seed

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/tuanano/wms-web/internal/models"
)

// Config configures the synthetic warehouse generator.
type Config struct {
	Zones          int
	SlotsPerZone   int
	Products       int
	UnitsPerSlot   int
	MixingRatio    float64 // share of slots that allow mixing
	PalletRatio    float64 // share of serial groups placed on a pallet
	EmptySlotRatio float64
	RandomSeed     int64
}

// DefaultConfig returns a small but varied warehouse layout.
func DefaultConfig() Config {
	return Config{
		Zones:          4,
		SlotsPerZone:   8,
		Products:       12,
		UnitsPerSlot:   6,
		MixingRatio:    0.6,
		PalletRatio:    0.4,
		EmptySlotRatio: 0.25,
		RandomSeed:     2024,
	}
}

// Generator builds synthetic inventory snapshots. Output depends only on Config.
type Generator struct {
	cfg Config
	rng *rand.Rand

	unitSeq   int
	palletSeq int
}

// NewGenerator creates a new generator.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.RandomSeed)),
	}
}

// Generate returns a consistent snapshot: every load equals the quantity of
// the units at the slot, no slot exceeds capacity, non-mixing slots hold a
// single product and each pallet sits at exactly one slot.
func (g *Generator) Generate() *models.Snapshot {
	slog.Debug("generating synthetic warehouse",
		"zones", g.cfg.Zones,
		"slots_per_zone", g.cfg.SlotsPerZone,
		"seed", g.cfg.RandomSeed,
	)

	snap := &models.Snapshot{}
	products := g.products()

	for z := 0; z < g.cfg.Zones; z++ {
		zone := string(rune('A' + z%26))
		for s := 1; s <= g.cfg.SlotsPerZone; s++ {
			l := &models.Location{
				ID:           fmt.Sprintf("%s%d-%02d", zone, z+1, s),
				Zone:         zone,
				Capacity:     20 + 10*g.rng.Intn(10),
				AllowsMixing: g.rng.Float64() < g.cfg.MixingRatio,
			}
			snap.Locations = append(snap.Locations, l)

			if g.rng.Float64() < g.cfg.EmptySlotRatio {
				continue
			}
			snap.Units = append(snap.Units, g.fill(l, products)...)
		}
	}

	return snap
}

type product struct {
	code     string
	name     string
	tracking models.TrackingType
}

func (g *Generator) products() []product {
	out := make([]product, g.cfg.Products)
	for i := range out {
		tracking := models.TrackingBatch
		switch i % 3 {
		case 0:
			tracking = models.TrackingSerial
		case 2:
			tracking = models.TrackingSKU
		}
		out[i] = product{
			code:     fmt.Sprintf("PRD-%03d", i+1),
			name:     fmt.Sprintf("Synthetic product %d", i+1),
			tracking: tracking,
		}
	}
	return out
}

// fill places units into l until the next unit would not fit.
func (g *Generator) fill(l *models.Location, products []product) []*models.InventoryUnit {
	var units []*models.InventoryUnit

	first := products[g.rng.Intn(len(products))]
	groups := 1
	if l.AllowsMixing {
		groups = 1 + g.rng.Intn(3)
	}

	for grp := 0; grp < groups; grp++ {
		p := first
		if grp > 0 {
			p = products[g.rng.Intn(len(products))]
		}

		switch p.tracking {
		case models.TrackingSerial:
			pallet := ""
			if g.rng.Float64() < g.cfg.PalletRatio {
				g.palletSeq++
				pallet = fmt.Sprintf("%s%03d", models.DefaultPalletPrefix, 100+g.palletSeq)
			}
			n := 1 + g.rng.Intn(g.cfg.UnitsPerSlot)
			for i := 0; i < n && l.FreeCapacity() >= 1; i++ {
				units = append(units, g.unit(p, l, 1, pallet))
			}
		default:
			qty := 1 + g.rng.Intn(l.Capacity/2+1)
			if qty > l.FreeCapacity() {
				qty = l.FreeCapacity()
			}
			if qty > 0 {
				units = append(units, g.unit(p, l, qty, ""))
			}
		}
	}
	return units
}

func (g *Generator) unit(p product, l *models.Location, qty int, pallet string) *models.InventoryUnit {
	g.unitSeq++
	u := &models.InventoryUnit{
		ID:                fmt.Sprintf("G%05d", g.unitSeq),
		TrackingType:      p.tracking,
		ProductCode:       p.code,
		ProductName:       p.name,
		Quantity:          qty,
		CurrentLocationID: l.ID,
		PalletID:          pallet,
	}
	switch p.tracking {
	case models.TrackingSerial:
		u.TrackingValue = fmt.Sprintf("SN-%s-%05d", p.code, g.unitSeq)
	case models.TrackingBatch:
		u.TrackingValue = fmt.Sprintf("LOT-%s-%02d", p.code, g.rng.Intn(4))
	}
	l.CurrentLoad += qty
	return u
}
