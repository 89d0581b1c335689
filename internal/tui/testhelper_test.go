package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tuanano/wms-web/internal/config"
	"github.com/tuanano/wms-web/internal/database"
	"github.com/tuanano/wms-web/internal/database/seed"
	"github.com/tuanano/wms-web/internal/repository"
	"github.com/tuanano/wms-web/internal/services/relocation"
)

// testClock is a settable clock for undo window tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestService creates a loaded relocation service backed by an in-memory
// SQLite database seeded with the demo warehouse. Applies have no latency.
func newTestService(t *testing.T) *relocation.Service {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	st := repository.NewSQLStore(db)
	if err := st.Import(ctx, seed.Demo()); err != nil {
		t.Fatalf("importing demo inventory: %v", err)
	}

	svc := relocation.NewService(st, relocation.Options{
		Logger: quietLogger(),
	})
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("loading inventory: %v", err)
	}
	return svc
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp creates an App over the demo warehouse with a fixed clock.
// The window is set to 120x40 and marked ready.
func newTestApp(t *testing.T) (*App, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}

	app := New(newTestService(t), config.Default(), quietLogger())
	app.now = clock.Now

	// Simulate a window size message to make the app ready
	app.width = 120
	app.height = 40
	app.ready = true
	app.updateViewDimensions()

	return app, clock
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

// typeText sends one key message per rune.
func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(keyMsg(string(r)))
	}
}

// runCmd executes a command and feeds its message back into the app, the
// way the Bubble Tea runtime would. Batches and ticks are not followed.
func runCmd(t *testing.T, app *App, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if _, ok := msg.(tickMsg); ok {
		return nil
	}
	_, next := app.Update(msg)
	return next
}

// settle runs commands until none is left.
func settle(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		cmd = runCmd(t, app, cmd)
	}
}

// press sends a key and settles the commands it produces.
func press(t *testing.T, app *App, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := app.Update(msg)
	settle(t, app, cmd)
}

// loadLocation types a location id on the by-location screen and loads it.
func loadLocation(t *testing.T, app *App, id string) {
	t.Helper()
	typeText(app, id)
	press(t, app, specialKeyMsg(tea.KeyEnter))
	if loc := app.byLocator.Location(); loc == nil || loc.ID != id {
		t.Fatalf("location %s not loaded", id)
	}
}
