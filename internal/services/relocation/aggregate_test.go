package relocation

import (
	"reflect"
	"testing"

	"github.com/tuanano/wms-web/internal/database/seed"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/testutil"
)

func TestAggregate_LocationA101(t *testing.T) {
	d := demoDirectory()
	lines := Aggregate(d.UnitsAt("A1-01"))

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	iphones := lines[0]
	if iphones.ProductCode != "IP15PM" || iphones.TotalQuantity != 7 {
		t.Errorf("unexpected first line %s x%d", iphones.ProductCode, iphones.TotalQuantity)
	}
	if iphones.ProductName != seed.ProductNames["IP15PM"] {
		t.Errorf("expected product name from units, got %q", iphones.ProductName)
	}

	airpods := lines[1]
	if airpods.ProductCode != "AIRPODSPRO" || airpods.TotalQuantity != 50 {
		t.Errorf("unexpected second line %s x%d", airpods.ProductCode, airpods.TotalQuantity)
	}
	if !reflect.DeepEqual(airpods.SourceLocations, []string{"A1-01"}) {
		t.Errorf("unexpected sources %v", airpods.SourceLocations)
	}
	if TotalUnits(lines) != 57 {
		t.Errorf("expected 57 units, got %d", TotalUnits(lines))
	}
}

func TestAggregate_SourceLocationsInDiscoveryOrder(t *testing.T) {
	d := demoDirectory()
	lines := Aggregate(Resolve(d, "AIRPODSPRO").Units)

	want := []string{"A1-01", "D2-PICK-01", "A1-02"}
	if !reflect.DeepEqual(lines[0].SourceLocations, want) {
		t.Errorf("SourceLocations = %v, want %v", lines[0].SourceLocations, want)
	}
	if lines[0].TotalQuantity != 100 {
		t.Errorf("expected 100, got %d", lines[0].TotalQuantity)
	}
}

// checkLines asserts the derived fields of every line agree with its units.
func checkLines(t *testing.T, lines []ProductLine) {
	t.Helper()

	seen := make(map[string]string)
	for _, l := range lines {
		if len(l.Units) == 0 {
			t.Errorf("line %s has no units", l.ProductCode)
		}
		sum := 0
		for _, u := range l.Units {
			sum += u.Quantity
			if u.ProductCode != l.ProductCode {
				t.Errorf("unit %s (%s) in line %s", u.ID, u.ProductCode, l.ProductCode)
			}
			if other, dup := seen[u.ID]; dup {
				t.Errorf("unit %s in lines %s and %s", u.ID, other, l.ProductCode)
			}
			seen[u.ID] = l.ProductCode
		}
		if sum != l.TotalQuantity {
			t.Errorf("line %s: total %d, units sum to %d", l.ProductCode, l.TotalQuantity, sum)
		}
	}
}

func TestAggregate_Properties(t *testing.T) {
	for _, seedValue := range []int64{1, 7, 42, 2024} {
		cfg := seed.DefaultConfig()
		cfg.RandomSeed = seedValue
		units := seed.NewGenerator(cfg).Generate().Units

		lines := Aggregate(units)
		checkLines(t, lines)

		if TotalUnits(lines) != sumQuantity(units) {
			t.Errorf("seed %d: lines hold %d units, input %d", seedValue, TotalUnits(lines), sumQuantity(units))
		}

		// Adding the same units again is a no-op
		again := AddUnits(lines, units)
		if !reflect.DeepEqual(again, lines) {
			t.Errorf("seed %d: AddUnits with present units changed the lines", seedValue)
		}

		// Removing a unit and adding it back restores the totals
		victim := units[len(units)/2]
		removed := RemoveUnit(lines, victim.ProductCode, victim.ID)
		checkLines(t, removed)
		if TotalUnits(removed) != TotalUnits(lines)-victim.Quantity {
			t.Errorf("seed %d: RemoveUnit left %d units", seedValue, TotalUnits(removed))
		}
		restored := AddUnits(removed, []*models.InventoryUnit{victim})
		checkLines(t, restored)
		if TotalUnits(restored) != TotalUnits(lines) {
			t.Errorf("seed %d: re-adding gave %d units, want %d", seedValue, TotalUnits(restored), TotalUnits(lines))
		}
		was, _ := FindLine(lines, victim.ProductCode)
		now, ok := FindLine(restored, victim.ProductCode)
		if !ok {
			t.Fatalf("seed %d: line %s missing after re-adding", seedValue, victim.ProductCode)
		}
		if !reflect.DeepEqual(locationSet(now.SourceLocations), locationSet(was.SourceLocations)) {
			t.Errorf("seed %d: source locations %v, want %v", seedValue, now.SourceLocations, was.SourceLocations)
		}
	}
}

func locationSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sumQuantity(units []*models.InventoryUnit) int {
	n := 0
	for _, u := range units {
		n += u.Quantity
	}
	return n
}

func TestAddUnits_DoesNotModifyInput(t *testing.T) {
	d := demoDirectory()
	lines := Aggregate(d.UnitsAt("A1-01"))
	before := lines[0].TotalQuantity

	extra := Resolve(d, "IMEI-358QC1").Units
	next := AddUnits(lines, extra)

	if lines[0].TotalQuantity != before || len(lines[0].Units) != 7 {
		t.Error("AddUnits modified its input")
	}
	if next[0].TotalQuantity != 8 {
		t.Errorf("expected 8 iPhones, got %d", next[0].TotalQuantity)
	}
	if !reflect.DeepEqual(next[0].SourceLocations, []string{"A1-01", "QC-01"}) {
		t.Errorf("unexpected sources %v", next[0].SourceLocations)
	}
}

func TestRemoveUnit_DropsEmptyLine(t *testing.T) {
	d := demoDirectory()
	lines := Aggregate(d.UnitsAt("A1-01"))

	next := RemoveUnit(lines, "AIRPODSPRO", "B001")
	if len(next) != 1 {
		t.Fatalf("expected 1 line, got %d", len(next))
	}
	if _, ok := FindLine(next, "AIRPODSPRO"); ok {
		t.Error("empty line should be removed")
	}
	if len(lines) != 2 {
		t.Error("RemoveUnit modified its input")
	}
}

func TestRemoveLine(t *testing.T) {
	d := demoDirectory()
	lines := Aggregate(d.UnitsAt("A1-01"))

	next := RemoveLine(lines, "IP15PM")
	if len(next) != 1 || next[0].ProductCode != "AIRPODSPRO" {
		t.Errorf("unexpected lines after RemoveLine: %+v", next)
	}
	if got := RemoveLine(lines, "UNKNOWN"); len(got) != 2 {
		t.Errorf("removing an unknown line should keep all lines, got %d", len(got))
	}
}

func TestProductLine_Subject(t *testing.T) {
	d := demoDirectory()
	line, _ := FindLine(Aggregate(d.UnitsAt("A1-01")), "IP15PM")

	want := MoveSubject{Quantity: 7, ProductCode: "IP15PM"}
	if line.Subject() != want {
		t.Errorf("Subject() = %+v, want %+v", line.Subject(), want)
	}
	if len(line.UnitIDs()) != 7 || line.UnitIDs()[0] != "S001" {
		t.Errorf("unexpected unit ids %v", line.UnitIDs())
	}
}

func TestAddUnits_MergesPicksOfOneLot(t *testing.T) {
	d := demoDirectory()
	candidates := Resolve(d, "BATCH-AP2-24Q3").Units

	tests := []struct {
		name      string
		scans     []map[string]int
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "two partial picks add up",
			scans:     []map[string]int{{"B001": 10}, {"B001": 5}},
			wantIDs:   []string{"B001-picked-15"},
			wantTotal: 15,
		},
		{
			name:      "whole lot absorbs an earlier pick",
			scans:     []map[string]int{{"B001": 10}, {"B001": 50}},
			wantIDs:   []string{"B001"},
			wantTotal: 50,
		},
		{
			name:      "pick after the whole lot is ignored",
			scans:     []map[string]int{{"B001": 50}, {"B001": 10}},
			wantIDs:   []string{"B001"},
			wantTotal: 50,
		},
		{
			name:      "picks of different lots stay apart",
			scans:     []map[string]int{{"B001": 10}, {"B002": 5}},
			wantIDs:   []string{"B001-picked-10", "B002-picked-5"},
			wantTotal: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []ProductLine
			for _, scan := range tt.scans {
				picked, err := PickQuantities(candidates, scan)
				if err != nil {
					t.Fatalf("PickQuantities failed: %v", err)
				}
				lines = AddUnits(lines, picked)
			}

			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if got := lines[0].UnitIDs(); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("unit ids = %v, want %v", got, tt.wantIDs)
			}
			if lines[0].TotalQuantity != tt.wantTotal {
				t.Errorf("total = %d, want %d", lines[0].TotalQuantity, tt.wantTotal)
			}
		})
	}
}

func TestAddUnits_KeepsSplitUnitsApart(t *testing.T) {
	source := testutil.FixtureBatchUnit("LOT-1", 20, testutil.At("A1-01"))
	split := source.Clone()
	split.ID = "SPLIT-1"
	split.Quantity = 5
	split.SourceUnitID = source.ID

	lines := Aggregate([]*models.InventoryUnit{source, split})
	if len(lines[0].Units) != 2 || lines[0].TotalQuantity != 25 {
		t.Errorf("expected both stock units, got %v (%d)", lines[0].UnitIDs(), lines[0].TotalQuantity)
	}
}

func TestCapPicks(t *testing.T) {
	d := demoDirectory()
	candidates := Resolve(d, "BATCH-AP2-24Q3").Units

	var lines []ProductLine
	for _, qty := range []int{30, 30} {
		picked, err := PickQuantities(candidates, map[string]int{"B001": qty})
		if err != nil {
			t.Fatalf("PickQuantities failed: %v", err)
		}
		lines = AddUnits(lines, picked)
	}
	if lines[0].TotalQuantity != 60 {
		t.Fatalf("expected the raw merge to hold 60, got %d", lines[0].TotalQuantity)
	}

	capped := CapPicks(d, lines)
	if got := capped[0].UnitIDs(); !reflect.DeepEqual(got, []string{"B001"}) {
		t.Errorf("unit ids = %v, want [B001]", got)
	}
	if capped[0].TotalQuantity != 50 {
		t.Errorf("total = %d, want the 50 in stock", capped[0].TotalQuantity)
	}
	if lines[0].TotalQuantity != 60 {
		t.Error("CapPicks modified its input")
	}
}
