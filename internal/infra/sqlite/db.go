// Package sqlite provides SQLite-based persistent storage for ResetDopa.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// User program state: one row per top-level document field, value
		// stored as JSON. Field granularity gives the gateway natural
		// partial-merge semantics.
		`CREATE TABLE IF NOT EXISTS user_state (
			user_id    TEXT NOT NULL,
			field      TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, field)
		)`,

		// Device-local flags (notification dedupe, testing toggles).
		// Never synced; not part of the user document.
		`CREATE TABLE IF NOT EXISTS local_kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── User State ─────────────────────────────────────────────────────────────

// LoadState fetches every stored field for a user. An empty map means no
// record exists yet (first run).
func (d *DB) LoadState(userID string) (map[string]json.RawMessage, error) {
	rows, err := d.db.Query(
		`SELECT field, value FROM user_state WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	fields := map[string]json.RawMessage{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan state field: %w", err)
		}
		fields[field] = json.RawMessage(value)
	}
	return fields, rows.Err()
}

// ApplyFields upserts a batch of document fields atomically.
func (d *DB) ApplyFields(userID string, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for field, value := range fields {
		if _, err := tx.Exec(
			`INSERT INTO user_state (user_id, field, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, field) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			userID, field, string(value), now,
		); err != nil {
			return fmt.Errorf("upsert field %s: %w", field, err)
		}
	}
	return tx.Commit()
}

// DeleteState removes every field for a user. Used by the beginner reset.
func (d *DB) DeleteState(userID string) error {
	_, err := d.db.Exec(`DELETE FROM user_state WHERE user_id = ?`, userID)
	return err
}

// ─── Local KV ───────────────────────────────────────────────────────────────

// SetLocal stores a device-local key-value pair.
func (d *DB) SetLocal(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO local_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetLocal retrieves a device-local value. Returns "" if key not found.
func (d *DB) GetLocal(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM local_kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
