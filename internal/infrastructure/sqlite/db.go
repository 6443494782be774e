// Package sqlite stores the build catalog in SQLite.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/roster/internal/log"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB owns the catalog database connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the catalog at path and applies pending
// migrations. An existing database file is copied to path+".bak" first.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	if err := backup(path); err != nil {
		return nil, fmt.Errorf("backing up catalog: %w", err)
	}

	dsn := "file:" + path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	log.Debug(log.CatDB, "Opening catalog", "path", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to catalog: %w", err)
	}

	if err := migrateUp(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Catalog migration failed", err, "path", path)
		return nil, err
	}
	log.Info(log.CatDB, "Catalog ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func migrateUp(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// backup copies an existing, non-empty database file to path+".bak".
func backup(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		return nil
	}
	if err != nil {
		return err
	}

	src, err := os.Open(path) //nolint:gosec // G304: catalog path comes from config
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // G304: derived from catalog path
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// CatalogRepository returns the build catalog backed by this database.
func (db *DB) CatalogRepository() registry.CatalogRepository {
	return newCatalogRepository(db.conn)
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
