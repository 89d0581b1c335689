package relocation

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/tuanano/wms-web/internal/database/seed"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
	"github.com/tuanano/wms-web/internal/testutil"
)

func TestApplyMoves_PalletToEmptySlot(t *testing.T) {
	svc, st, ctx := setupService(t, nil)

	var payload []models.MoveRequest
	for _, id := range []string{"S001", "S002", "S003", "S004", "S005"} {
		payload = append(payload, moveTo(id, "E1-01"))
	}

	result, err := svc.ApplyMoves(ctx, payload)
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(result.Applied) != 5 || result.Partial() {
		t.Fatalf("expected 5 applied and none skipped, got %d/%d", len(result.Applied), len(result.Skipped))
	}
	if result.UnitsMoved() != 5 {
		t.Errorf("expected 5 units moved, got %d", result.UnitsMoved())
	}

	if got := mustLocation(t, svc, "A1-01").CurrentLoad; got != 52 {
		t.Errorf("A1-01 load = %d, want 52", got)
	}
	if got := mustLocation(t, svc, "E1-01").CurrentLoad; got != 5 {
		t.Errorf("E1-01 load = %d, want 5", got)
	}

	for _, id := range []string{"S001", "S005"} {
		u := mustUnit(t, svc, id)
		if u.CurrentLocationID != "E1-01" || u.PalletID != "" {
			t.Errorf("unit %s at %s, want loose at E1-01", id, u.Locator())
		}
	}
	if _, ok := svc.GetPalletLocation("PAL-001"); ok {
		t.Error("PAL-001 has no members left and should not resolve")
	}

	// The store saw the same batch
	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("store snapshot: %v", err)
	}
	if testutil.FindLocation(snap, "E1-01").CurrentLoad != 5 {
		t.Error("store was not updated")
	}
	if err := store.ValidateSnapshot(snap); err != nil {
		t.Errorf("store snapshot inconsistent after apply: %v", err)
	}

	log, err := svc.MoveLog(ctx, 0)
	if err != nil {
		t.Fatalf("MoveLog: %v", err)
	}
	if len(log) != 5 {
		t.Fatalf("expected 5 log records, got %d", len(log))
	}
	if log[0].UnitID != "S005" || log[0].BatchID != result.BatchID || log[0].FromPalletID != "PAL-001" {
		t.Errorf("unexpected newest record %+v", log[0])
	}
}

func TestApplyMoves_RecordsResolvedSource(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	// A stale From does not stop the move; the applied request carries the truth
	req := moveTo("S001", "E1-01")
	req.From = models.Locator{LocationID: "A1-02"}

	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{req})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	want := models.Locator{LocationID: "A1-01", PalletID: "PAL-001"}
	if result.Applied[0].From != want {
		t.Errorf("applied From = %+v, want %+v", result.Applied[0].From, want)
	}
}

func TestApplyMoves_PalletTarget(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo("S006", "pal-002")})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}

	u := mustUnit(t, svc, "S006")
	if u.CurrentLocationID != "A1-02" || u.PalletID != "PAL-002" {
		t.Errorf("S006 at %s, want PAL-002@A1-02", u.Locator())
	}
	want := models.Locator{LocationID: "A1-02", PalletID: "PAL-002"}
	if result.Applied[0].To != want {
		t.Errorf("applied To = %+v, want %+v", result.Applied[0].To, want)
	}
	if got := mustLocation(t, svc, "A1-02").CurrentLoad; got != 49 {
		t.Errorf("A1-02 load = %d, want 49", got)
	}
}

func TestApplyMoves_PartialQuantitySplits(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	req := moveTo("B001", "E1-01")
	req.Quantity = 20

	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{req})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}

	applied := result.Applied[0]
	if applied.SplitFrom != "B001" || applied.UnitID != "B001-S0001" || applied.Quantity != 20 {
		t.Fatalf("unexpected applied request %+v", applied)
	}

	src := mustUnit(t, svc, "B001")
	if src.Quantity != 30 || src.CurrentLocationID != "A1-01" {
		t.Errorf("source left as %+v", src)
	}
	part := mustUnit(t, svc, "B001-S0001")
	if part.Quantity != 20 || part.CurrentLocationID != "E1-01" || part.SourceUnitID != "B001" {
		t.Errorf("split unit is %+v", part)
	}
	if part.TrackingValue != "BATCH-AP2-24Q3" {
		t.Errorf("split unit lost its lot: %q", part.TrackingValue)
	}

	if got := mustLocation(t, svc, "A1-01").CurrentLoad; got != 37 {
		t.Errorf("A1-01 load = %d, want 37", got)
	}
	if got := mustLocation(t, svc, "E1-01").CurrentLoad; got != 20 {
		t.Errorf("E1-01 load = %d, want 20", got)
	}
}

func TestApplyMoves_SkipsAndReports(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	over := moveTo("B002", "E1-01")
	over.Quantity = 11
	negative := moveTo("B001", "E1-01")
	negative.Quantity = -1

	payload := []models.MoveRequest{
		moveTo("NOPE", "E1-01"),
		moveTo("S001", "PAL-999"),
		moveTo("S002", "Z9-99"),
		moveTo("S003", "E1-01"),
		moveTo("S003", "E1-02"),
		over,
		negative,
		{UnitID: "S004"},
	}

	result, err := svc.ApplyMoves(ctx, payload)
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].UnitID != "S003" {
		t.Fatalf("expected only S003 applied, got %+v", result.Applied)
	}

	wantErrs := []error{
		ErrUnitNotFound,
		ErrPalletNotFound,
		ErrLocationNotFound,
		ErrDuplicateUnit,
		ErrQuantityExceedsStock,
		ErrInvalidQuantity,
		ErrTargetUnresolved,
	}
	if len(result.Skipped) != len(wantErrs) {
		t.Fatalf("expected %d skipped, got %d", len(wantErrs), len(result.Skipped))
	}
	for i, want := range wantErrs {
		if !errors.Is(result.Skipped[i].Err, want) {
			t.Errorf("skipped[%d] (%s): got %v, want %v", i, result.Skipped[i].Request.UnitID, result.Skipped[i].Err, want)
		}
	}
	if !errors.Is(result.Skipped[1].Err, ErrTargetUnresolved) {
		t.Error("unknown pallet should also report an unresolved target")
	}

	if got := mustUnit(t, svc, "S001"); got.CurrentLocationID != "A1-01" {
		t.Error("skipped unit moved")
	}
}

func TestApplyMoves_RunningLedger(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	// C1-08 takes exactly 30; the next batch behind it no longer fits
	first, err := svc.ApplyMoves(ctx, []models.MoveRequest{
		moveTo("B011", "C1-08"),
		moveTo("B021", "C1-08"),
	})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(first.Applied) != 1 || len(first.Skipped) != 1 {
		t.Fatalf("expected 1 applied and 1 skipped, got %d/%d", len(first.Applied), len(first.Skipped))
	}
	if !errors.Is(first.Skipped[0].Err, ErrInsufficientCapacity) {
		t.Errorf("expected capacity skip, got %v", first.Skipped[0].Err)
	}
	if got := mustLocation(t, svc, "C1-08").CurrentLoad; got != 30 {
		t.Errorf("C1-08 load = %d, want 30", got)
	}

	// Loads follow every payload of a batch, in and out
	second, err := svc.ApplyMoves(ctx, []models.MoveRequest{
		moveTo("B002", "E1-01"),
		moveTo("B098", "D2-PICK-01"),
		moveTo("B012", "D2-PICK-01"),
	})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if second.Partial() {
		t.Fatalf("unexpected skips: %+v", second.Skipped)
	}
	if got := mustLocation(t, svc, "D2-PICK-01").CurrentLoad; got != 10 {
		t.Errorf("D2-PICK-01 load = %d, want 10", got)
	}
	if got := mustLocation(t, svc, "QC-01").CurrentLoad; got != 1 {
		t.Errorf("QC-01 load = %d, want 1", got)
	}
}

func TestApplyMoves_CapacityNeedsFreedSpace(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	// 15 LOGI-MX3 fit into D2-PICK-01 only once the AirPods leave
	req := moveTo("B011", "D2-PICK-01")
	req.Quantity = 15

	blocked, err := svc.ApplyMoves(ctx, []models.MoveRequest{req})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(blocked.Applied) != 0 || !errors.Is(blocked.Skipped[0].Err, ErrInsufficientCapacity) {
		t.Fatalf("expected capacity skip, got %+v", blocked)
	}

	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo("B002", "E1-01"), req})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(result.Applied) != 2 {
		t.Fatalf("expected both moves applied, got %+v", result.Skipped)
	}
	if got := mustLocation(t, svc, "D2-PICK-01").CurrentLoad; got != 15 {
		t.Errorf("D2-PICK-01 load = %d, want 15", got)
	}
}

func TestApplyMoves_NothingApplicable(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo("NOPE", "E1-01")})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if len(result.Applied) != 0 || len(result.Skipped) != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	log, _ := svc.MoveLog(ctx, 0)
	if len(log) != 0 {
		t.Errorf("expected no log records, got %d", len(log))
	}
}

func TestApplyMoves_StoreFailureLeavesStateUntouched(t *testing.T) {
	mem := store.NewMemoryStore(testutil.DemoSnapshot())
	svc := NewService(failingStore{mem}, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before, _ := svc.Snapshot()

	_, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo("S001", "E1-01")})
	if !errors.Is(err, errCommitRejected) {
		t.Fatalf("expected commit error, got %v", err)
	}

	after, _ := svc.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Error("a failed commit changed the session state")
	}
	if svc.Applying() {
		t.Error("apply flag left set after failure")
	}
}

func TestUndo_RestoresExactState(t *testing.T) {
	svc, st, ctx := setupService(t, nil)

	before, err := svc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	split := moveTo("B001", "E1-01")
	split.Quantity = 20
	payload := []models.MoveRequest{
		moveTo("S001", "PAL-002"),
		moveTo("S006", "E1-01"),
		split,
		moveTo("B012", "C1-05"),
		moveTo("S041", "E1-02"),
		moveTo("S042", "E1-02"),
		moveTo("S043", "E1-02"),
	}

	result, err := svc.ApplyMoves(ctx, payload)
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if result.Partial() {
		t.Fatalf("unexpected skips: %+v", result.Skipped)
	}

	undone, err := svc.Undo(ctx, result)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if undone.Partial() {
		t.Fatalf("undo skipped moves: %+v", undone.Skipped)
	}

	after, _ := svc.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("undo did not restore the session state")
		for i := range before.Units {
			if i < len(after.Units) && *before.Units[i] != *after.Units[i] {
				t.Logf("unit %d: before %+v after %+v", i, before.Units[i], after.Units[i])
			}
		}
	}

	stored, _ := st.Snapshot(ctx)
	if !reflect.DeepEqual(before, stored) {
		t.Error("undo did not restore the store")
	}

	if loc, ok := svc.GetPalletLocation("PAL-003"); !ok || loc != "A1-03" {
		t.Errorf("PAL-003 should be back at A1-03, got %q, %v", loc, ok)
	}
	if _, ok := svc.Unit("B001-S0001"); ok {
		t.Error("split unit should be merged back")
	}
}

func TestUndo_KeepsPalletSpelling(t *testing.T) {
	snap := testutil.NewSnapshot(
		[]*models.Location{testutil.FixtureLocation("X1-01"), testutil.FixtureLocation("X1-02")},
		[]*models.InventoryUnit{
			testutil.FixtureSerialUnit("SN-1", testutil.At("X1-01"), testutil.OnPallet("pal-7")),
			testutil.FixtureSerialUnit("SN-2", testutil.At("X1-02")),
		},
	)
	first, second := snap.Units[0].ID, snap.Units[1].ID
	svc, _, ctx := setupService(t, snap)

	// A typed pallet id takes the spelling already on the floor
	if _, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo(second, "PAL-7")}); err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if got := mustUnit(t, svc, second).PalletID; got != "pal-7" {
		t.Fatalf("pallet id = %q, want pal-7", got)
	}
	before, _ := svc.Snapshot()

	// Emptying the pallet and undoing restores it exactly
	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{moveTo(first, "X1-02"), moveTo(second, "X1-02")})
	if err != nil || result.Partial() {
		t.Fatalf("ApplyMoves failed: %v %+v", err, result)
	}
	if _, ok := svc.GetPalletLocation("pal-7"); ok {
		t.Fatal("pallet should be empty")
	}
	if _, err := svc.Undo(ctx, result); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	after, _ := svc.Snapshot()
	if !reflect.DeepEqual(before, after) {
		for i := range before.Units {
			t.Logf("unit %d: before %+v after %+v", i, before.Units[i], after.Units[i])
		}
		t.Error("undo did not restore the pallet spelling")
	}
}

func TestUndo_ForwardMerge(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	// Split, then merge explicitly, then undo the merge
	split := moveTo("B001", "E1-01")
	split.Quantity = 5
	first, err := svc.ApplyMoves(ctx, []models.MoveRequest{split})
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	before, _ := svc.Snapshot()

	part := first.Applied[0].UnitID
	merge := models.MoveRequest{UnitID: part, To: models.Locator{LocationID: "A1-01"}, MergeInto: "B001"}
	merged, err := svc.ApplyMoves(ctx, []models.MoveRequest{merge})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if got := mustUnit(t, svc, "B001").Quantity; got != 50 {
		t.Fatalf("B001 quantity = %d, want 50", got)
	}

	if _, err := svc.Undo(ctx, merged); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	after, _ := svc.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Error("undoing a merge did not restore the split")
	}
}

func TestApplyMoves_MergeFallsBackToMove(t *testing.T) {
	svc, _, ctx := setupService(t, nil)

	// Merging into a unit of another lot moves the unit instead
	req := models.MoveRequest{UnitID: "B002", To: models.Locator{LocationID: "A1-02"}, MergeInto: "B003"}
	result, err := svc.ApplyMoves(ctx, []models.MoveRequest{req})
	if err != nil {
		t.Fatalf("ApplyMoves failed: %v", err)
	}
	if result.Applied[0].MergeInto != "" {
		t.Errorf("expected a plain move, got %+v", result.Applied[0])
	}
	if u := mustUnit(t, svc, "B002"); u.CurrentLocationID != "A1-02" || u.Quantity != 10 {
		t.Errorf("B002 is %+v", u)
	}
}

func TestUndo_GeneratedWarehouses(t *testing.T) {
	for _, seedValue := range []int64{3, 11, 97, 2024} {
		cfg := seed.DefaultConfig()
		cfg.RandomSeed = seedValue
		snap := seed.NewGenerator(cfg).Generate()

		svc, _, ctx := setupService(t, snap)
		before, _ := svc.Snapshot()

		payload := randomPayload(rand.New(rand.NewSource(seedValue)), before, 10)
		result, err := svc.ApplyMoves(ctx, payload)
		if err != nil {
			t.Fatalf("seed %d: ApplyMoves failed: %v", seedValue, err)
		}

		mid, _ := svc.Snapshot()
		if err := store.ValidateSnapshot(mid); err != nil {
			t.Errorf("seed %d: state inconsistent after apply: %v", seedValue, err)
		}

		if len(result.Applied) == 0 {
			continue
		}
		undone, err := svc.Undo(ctx, result)
		if err != nil {
			t.Fatalf("seed %d: Undo failed: %v", seedValue, err)
		}
		if undone.Partial() {
			t.Errorf("seed %d: undo skipped %+v", seedValue, undone.Skipped)
		}

		after, _ := svc.Snapshot()
		if !reflect.DeepEqual(before, after) {
			t.Errorf("seed %d: round trip changed the warehouse", seedValue)
		}
	}
}

// randomPayload picks up to n distinct units and sends each to a random
// location or pallet, taking part of divisible units now and then.
func randomPayload(rng *rand.Rand, snap *models.Snapshot, n int) []models.MoveRequest {
	var destinations []string
	pallets := make(map[string]bool)
	for _, l := range snap.Locations {
		destinations = append(destinations, l.ID)
	}
	for _, u := range snap.Units {
		if u.PalletID != "" && !pallets[u.PalletID] {
			pallets[u.PalletID] = true
			destinations = append(destinations, u.PalletID)
		}
	}

	var out []models.MoveRequest
	for _, i := range rng.Perm(len(snap.Units)) {
		if len(out) == n {
			break
		}
		u := snap.Units[i]
		req := moveTo(u.ID, destinations[rng.Intn(len(destinations))])
		req.From = u.Locator()
		if u.Divisible() && rng.Intn(2) == 0 {
			req.Quantity = 1 + rng.Intn(u.Quantity-1)
		}
		out = append(out, req)
	}
	return out
}
