// Package store persists user data (favourites, playlists, sources) in a
// SQLite database. The engine itself never touches the store; the host loads
// on start and saves, debounced, after mutations.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// CurrentSchemaVersion is the current database schema version.
	CurrentSchemaVersion = "1"

	// DefaultDBPath is the default path for the user-data database.
	DefaultDBPath = "data/ongaku.db"
)

// DB is the SQLite user-data database.
type DB struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewDB creates a database instance for the given path.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{path: path}
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		d.db = nil
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("User-data database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

func (d *DB) initSchema() error {
	currentVersion := d.getSchemaVersion()

	if currentVersion == "" {
		if err := d.createSchema(); err != nil {
			return err
		}
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	if currentVersion != CurrentSchemaVersion {
		log.Info().
			Str("current", currentVersion).
			Str("target", CurrentSchemaVersion).
			Msg("Migrating store schema")
		// Add migration logic here when schema changes
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	return nil
}

func (d *DB) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favourites (
		position INTEGER PRIMARY KEY,
		artist TEXT NOT NULL,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		album TEXT NOT NULL,
		PRIMARY KEY (playlist_id, idx),
		FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		root TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, idx);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Msg("Store schema created")
	return nil
}

func (d *DB) getSchemaVersion() string {
	var version string
	err := d.db.QueryRow("SELECT value FROM store_meta WHERE key = 'schema_version'").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

func (d *DB) setMeta(key, value string) error {
	now := time.Now().Format(time.RFC3339)
	_, err := d.db.Exec(`
		INSERT INTO store_meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = ?
	`, key, value, now, value, now)
	return err
}

// DB returns the underlying sql.DB for the DAO.
func (d *DB) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}
