package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/testutil"
)

func setupUnitTest(t *testing.T) (*UnitRepository, *testutil.TestDB) {
	t.Helper()

	db, ctx := setupTestDB(t)
	locations := NewLocationRepository(db.DB)
	for i, id := range []string{"A1-01", "E1-01"} {
		if err := locations.Create(ctx, nil, testutil.FixtureLocation(id), i+1); err != nil {
			t.Fatalf("failed to create location %s: %v", id, err)
		}
	}
	return NewUnitRepository(db.DB), db
}

func TestUnitRepository_Save(t *testing.T) {
	repo, db := setupUnitTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serial := testutil.FixtureSerialUnit("IMEI-1", testutil.OnPallet("PAL-001"))
	batch := testutil.FixtureBatchUnit("LOT-1", 25)
	loose := testutil.FixtureUnit(testutil.At("E1-01"))

	for _, u := range []*models.InventoryUnit{serial, batch, loose} {
		if err := repo.Save(ctx, nil, u); err != nil {
			t.Fatalf("failed to save unit %s: %v", u.ID, err)
		}
	}
	db.AssertRowCount(t, "inventory_units", 3)

	t.Run("round trip", func(t *testing.T) {
		found, err := repo.GetByID(ctx, serial.ID)
		if err != nil {
			t.Fatalf("failed to get unit: %v", err)
		}
		if *found != *serial {
			t.Errorf("expected %+v, got %+v", serial, found)
		}

		found, _ = repo.GetByID(ctx, loose.ID)
		if found.PalletID != "" || found.SourceUnitID != "" {
			t.Errorf("expected empty optional fields, got %+v", found)
		}
	})

	t.Run("update keeps position", func(t *testing.T) {
		updated := serial.Clone()
		updated.CurrentLocationID = "E1-01"
		updated.PalletID = ""
		if err := repo.Save(ctx, nil, updated); err != nil {
			t.Fatalf("failed to update unit: %v", err)
		}
		db.AssertRowCount(t, "inventory_units", 3)

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list units: %v", err)
		}
		if list[0].ID != serial.ID || list[0].CurrentLocationID != "E1-01" {
			t.Errorf("expected updated %s first, got %+v", serial.ID, list[0])
		}
	})

	t.Run("ListByLocation ignores case", func(t *testing.T) {
		units, err := repo.ListByLocation(ctx, "e1-01")
		if err != nil {
			t.Fatalf("failed to list units: %v", err)
		}
		if len(units) != 2 {
			t.Errorf("expected 2 units at E1-01, got %d", len(units))
		}
	})
}

func TestUnitRepository_ListByPallet(t *testing.T) {
	repo, _ := setupUnitTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	for _, serial := range []string{"SN-1", "SN-2"} {
		if err := repo.Save(ctx, nil, testutil.FixtureSerialUnit(serial, testutil.OnPallet("PAL-009"))); err != nil {
			t.Fatalf("failed to save unit: %v", err)
		}
	}
	if err := repo.Save(ctx, nil, testutil.FixtureSerialUnit("SN-3")); err != nil {
		t.Fatalf("failed to save unit: %v", err)
	}

	units, err := repo.ListByPallet(ctx, "pal-009")
	if err != nil {
		t.Fatalf("failed to list pallet: %v", err)
	}
	if len(units) != 2 || units[0].TrackingValue != "SN-1" {
		t.Errorf("unexpected pallet members %+v", units)
	}
}

func TestUnitRepository_Constraints(t *testing.T) {
	repo, _ := setupUnitTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tests := []struct {
		name string
		unit *models.InventoryUnit
	}{
		{"unknown location", testutil.FixtureUnit(testutil.At("Z9-99"))},
		{"serial quantity", testutil.FixtureSerialUnit("SN-X", func(u *models.InventoryUnit) { u.Quantity = 2 })},
		{"zero quantity", testutil.FixtureUnit(func(u *models.InventoryUnit) { u.Quantity = 0 })},
		{"bad tracking type", testutil.FixtureUnit(func(u *models.InventoryUnit) { u.TrackingType = "LOT" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Save(ctx, nil, tt.unit); err == nil {
				t.Error("expected a constraint violation")
			}
		})
	}
}

func TestUnitRepository_Delete(t *testing.T) {
	repo, db := setupUnitTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	unit := testutil.FixtureUnit()
	if err := repo.Save(ctx, nil, unit); err != nil {
		t.Fatalf("failed to save unit: %v", err)
	}

	if err := repo.Delete(ctx, nil, unit.ID); err != nil {
		t.Fatalf("failed to delete unit: %v", err)
	}
	db.AssertRowCount(t, "inventory_units", 0)

	if err := repo.Delete(ctx, nil, unit.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, unit.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
