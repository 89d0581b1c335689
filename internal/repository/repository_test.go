package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tuanano/wms-web/internal/testutil"
)

func setupTestDB(t *testing.T) (*testutil.TestDB, context.Context) {
	t.Helper()

	db := testutil.NewTestDB(t)
	db.RunMigrations(t, filepath.Join("..", "database", "migrations"))
	return db, context.Background()
}
