// Package storagetest opens migrated throwaway SQLite databases for tests.
package storagetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vaultbot/core/database"
)

// Open runs the sqlite migrations against a file in t.TempDir and connects to it.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	cfg := database.Config{
		Driver:        database.DriverSQLite,
		Path:          filepath.Join(t.TempDir(), "vault.db"),
		MigrationsDir: migrationsDir(t),
	}
	require.NoError(t, database.RunMigrations(cfg))
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func migrationsDir(t testing.TB) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "go.mod not found above test directory")
		dir = parent
	}
}
