package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NewInMemory opens a private in-memory database with foreign keys on. It
// skips WAL and migrations; call Migrate when the schema is needed.
func NewInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every :memory: connection is its own database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &DB{DB: sqlDB, path: ":memory:"}, nil
}
