// Package testutil provides utilities for testing.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "modernc.org/sqlite" // SQLite driver
)

// TestDB wraps a test database connection.
type TestDB struct {
	*sql.DB
}

// NewTestDB creates a new in-memory SQLite database for testing. The pool is
// pinned to one connection because every :memory: connection is its own database.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	tdb := &TestDB{DB: db}
	t.Cleanup(func() { _ = db.Close() })
	return tdb
}

// RunMigrations executes the "Up" portion of every .sql file in
// migrationsDir, in file name order.
func (tdb *TestDB) RunMigrations(t *testing.T, migrationsDir string) {
	t.Helper()

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("failed to read migrations directory: %v", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".sql" {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		sqlBytes, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			t.Fatalf("failed to read migration %s: %v", name, err)
		}

		up := string(sqlBytes)
		if idx := strings.Index(up, "-- +migrate Down"); idx >= 0 {
			up = up[:idx]
		}

		if _, err := tdb.ExecContext(ctx, up); err != nil {
			t.Fatalf("failed to execute migration %s: %v", name, err)
		}
	}
}

// AssertRowCount asserts the row count for a table.
func (tdb *TestDB) AssertRowCount(t *testing.T, table string, expected int) {
	t.Helper()

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := tdb.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	if count != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, count)
	}
}

// ExecSQL executes arbitrary SQL (useful for test setup).
func (tdb *TestDB) ExecSQL(t *testing.T, query string, args ...any) {
	t.Helper()

	if _, err := tdb.Exec(query, args...); err != nil {
		t.Fatalf("failed to execute SQL: %v\nSQL: %s", err, query)
	}
}
