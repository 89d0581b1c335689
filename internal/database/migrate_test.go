package database

import (
	"context"
	"reflect"
	"testing"
)

func setupMigrator(t *testing.T) (*DB, *Migrator, context.Context) {
	t.Helper()

	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m, err := NewMigrator(db)
	if err != nil {
		t.Fatalf("NewMigrator failed: %v", err)
	}
	return db, m, context.Background()
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrator_UpAndDown(t *testing.T) {
	db, m, ctx := setupMigrator(t)

	if len(m.Migrations()) == 0 {
		t.Fatal("no embedded migrations found")
	}
	latest := m.Migrations()[len(m.Migrations())-1].Version

	result, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if result.FromVersion != 0 || result.ToVersion != latest {
		t.Errorf("migrated %d -> %d, want 0 -> %d", result.FromVersion, result.ToVersion, latest)
	}
	for _, table := range []string{"locations", "inventory_units", "relocation_log"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after MigrateUp", table)
		}
	}

	// Idempotent
	again, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}
	if len(again.Applied) != 0 {
		t.Errorf("expected nothing to apply, got %d", len(again.Applied))
	}

	pending, err := m.PendingMigrations(ctx)
	if err != nil || len(pending) != 0 {
		t.Errorf("expected no pending migrations, got %d (%v)", len(pending), err)
	}

	for v := latest; v > 0; {
		down, err := m.MigrateDown(ctx)
		if err != nil {
			t.Fatalf("MigrateDown from %d failed: %v", v, err)
		}
		v = down.ToVersion
	}
	if tableExists(t, db, "inventory_units") {
		t.Error("inventory_units should be dropped after rolling back")
	}
	if _, err := m.MigrateDown(ctx); err == nil {
		t.Error("expected an error rolling back an empty schema")
	}
}

func TestMigrate(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}
	defer db.Close()

	version, err := Migrate(context.Background(), db)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if version < 1 {
		t.Errorf("expected a positive schema version, got %d", version)
	}
}

func TestParseMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantUp   string
		wantDown string
	}{
		{"no markers", "CREATE TABLE a (x);", "CREATE TABLE a (x);", ""},
		{"up only", "-- +migrate Up\nCREATE TABLE a (x);", "CREATE TABLE a (x);", ""},
		{"up then down", "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;", "CREATE TABLE a (x);", "DROP TABLE a;"},
		{"down then up", "-- +migrate Down\nDROP TABLE a;\n-- +migrate Up\nCREATE TABLE a (x);", "CREATE TABLE a (x);", "DROP TABLE a;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := parseMigration(tt.content)
			if up != tt.wantUp || down != tt.wantDown {
				t.Errorf("parseMigration = %q, %q; want %q, %q", up, down, tt.wantUp, tt.wantDown)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment; with a semicolon
CREATE TABLE a (x TEXT DEFAULT 'a;b');
INSERT INTO a (x) VALUES ("c;d");
SELECT 1`

	got := splitStatements(script)
	want := []string{
		"CREATE TABLE a (x TEXT DEFAULT 'a;b')",
		`INSERT INTO a (x) VALUES ("c;d")`,
		"SELECT 1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitStatements = %q, want %q", got, want)
	}
}
