package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	registry "github.com/zjrosen/roster/internal/registry/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestNewDB_CreatesDirectory verifies that NewDB creates the parent directory if missing.
func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "catalog.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err, "Directory should exist after NewDB")
	require.True(t, info.IsDir(), "Should be a directory")

	// Unix only - Windows doesn't support Unix permissions
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm(), "Directory should have 0700 permissions")
	}
	require.Equal(t, dbPath, db.Path())
}

// TestNewDB_RunsMigrations verifies that NewDB creates the catalog tables.
func TestNewDB_RunsMigrations(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"builds", "artifacts", "schema_migrations"} {
		var name string
		err := db.conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "%s table should exist after migrations", table)
	}
}

// TestNewDB_PreMigrationBackup verifies that a .bak file is created when an
// existing database is reopened.
func TestNewDB_PreMigrationBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err, "First NewDB should succeed")
	err = db1.CatalogRepository().SaveBuild(context.Background(), registry.BuildRecord{
		ID: "b-1", SourceDir: ".", BuiltAt: time.Unix(1000, 0),
	})
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	_, err = os.Stat(dbPath + ".bak")
	require.True(t, os.IsNotExist(err), "no backup on first open")

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "Second NewDB should succeed")
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err, "Backup file should exist after second NewDB")
	require.Greater(t, info.Size(), int64(0), "Backup file should have content")

	builds, err := db2.CatalogRepository().ListBuilds(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, builds, 1, "reopening keeps existing data")
}

func TestNewDB_Pragmas(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

// TestDB_Close verifies that connection closes cleanly.
func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close(), "Close should succeed")
	require.Error(t, db.Connection().Ping(), "Ping should fail after Close")
}

func TestNewDB_Unwritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks do not apply")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	_, err := NewDB(filepath.Join(dir, "sub", "catalog.db"))
	require.Error(t, err)
}
