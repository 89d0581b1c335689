package relocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/store"
	"github.com/tuanano/wms-web/internal/testutil"
	"github.com/tuanano/wms-web/internal/util"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	splits := util.NewSequenceGenerator("")
	return Options{
		IDs:     util.NewSequenceGenerator("ID-"),
		SplitID: func(source string) string { return source + "-S" + splits.NewID() },
		Now:     func() time.Time { return time.Date(2024, 11, 5, 9, 30, 0, 0, time.UTC) },
		Logger:  quietLogger(),
	}
}

// setupService returns a loaded session over snap (the demo warehouse when nil).
func setupService(t *testing.T, snap *models.Snapshot) (*Service, *store.MemoryStore, context.Context) {
	t.Helper()

	if snap == nil {
		snap = testutil.DemoSnapshot()
	}
	st := store.NewMemoryStore(snap)
	svc := NewService(st, testOptions())

	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("loading service: %v", err)
	}
	return svc, st, ctx
}

func demoDirectory() *Directory {
	return NewDirectory(testutil.DemoSnapshot(), models.DefaultPalletPrefix)
}

func mustLocation(t *testing.T, svc *Service, id string) *models.Location {
	t.Helper()
	loc, ok := svc.GetLocation(id)
	if !ok {
		t.Fatalf("location %s not found", id)
	}
	return loc
}

func mustUnit(t *testing.T, svc *Service, id string) *models.InventoryUnit {
	t.Helper()
	u, ok := svc.Unit(id)
	if !ok {
		t.Fatalf("unit %s not found", id)
	}
	return u
}

func unitIDs(units []*models.InventoryUnit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func moveTo(unitID, dest string) models.MoveRequest {
	return models.MoveRequest{UnitID: unitID, To: models.ParseLocator(dest, models.DefaultPalletPrefix)}
}

// failingStore accepts reads and rejects every commit.
type failingStore struct {
	*store.MemoryStore
}

var errCommitRejected = errors.New("commit rejected")

func (f failingStore) Commit(context.Context, *store.Changeset) error {
	return errCommitRejected
}
