// Package dbtest opens throwaway migrated databases for package tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cardhub/pkg/database"
)

// Open returns a migrated database in t.TempDir, closed on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenAndMigrate(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Path migrates a database file in t.TempDir and returns its path, for code
// that opens the database itself.
func Path(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cardhub.db")
	db, err := database.OpenAndMigrate(database.Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

// SeedUser inserts a user row so foreign keys on user_id are satisfied.
func SeedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, email, username) VALUES (?, ?, ?)`,
		id, id+"@example.com", id)
	require.NoError(t, err)
}
