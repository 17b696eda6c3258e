// Package db is the SQLite store for aggregated bills and sync run history.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/capitol/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/capitol.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.capitol.
// The caller owns the returned handle and must Close it.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the connection string apply to every pooled connection
	dbPath := filepath.Join(baseDir, "capitol.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS bills (
		  congress                  INTEGER NOT NULL,
		  bill_type                 TEXT NOT NULL,
		  bill_number               TEXT NOT NULL,
		  type_raw                  TEXT NOT NULL,
		  title                     TEXT NOT NULL,
		  status                    TEXT NOT NULL,
		  introduced_date           TEXT NOT NULL,
		  update_date               TEXT,
		  summary                   TEXT,
		  policy_area               TEXT,
		  session_day               INTEGER NOT NULL,
		  total_cosponsors          INTEGER NOT NULL,
		  total_original_cosponsors INTEGER NOT NULL,
		  bipartisan_cosponsors     INTEGER NOT NULL,
		  sponsor_is_majority       INTEGER NOT NULL,
		  committee_count           INTEGER NOT NULL,
		  makeup_number             INTEGER NOT NULL,
		  party_house               TEXT,
		  party_margin_house        INTEGER NOT NULL,
		  party_senate              TEXT,
		  party_margin_senate       INTEGER NOT NULL,
		  unified_government        INTEGER NOT NULL,
		  stored_at                 INTEGER NOT NULL,
		  PRIMARY KEY (congress, bill_type, bill_number)
		);

		CREATE INDEX IF NOT EXISTS idx_bills_congress_status
		ON bills(congress, status);

		CREATE INDEX IF NOT EXISTS idx_bills_stored_at
		ON bills(stored_at DESC);

		CREATE TABLE IF NOT EXISTS bill_actions (
		  congress    INTEGER NOT NULL,
		  bill_type   TEXT NOT NULL,
		  bill_number TEXT NOT NULL,
		  seq         INTEGER NOT NULL,
		  action_code TEXT,
		  text        TEXT NOT NULL,
		  type        TEXT NOT NULL,
		  action_date TEXT NOT NULL,
		  PRIMARY KEY (congress, bill_type, bill_number, seq),
		  FOREIGN KEY (congress, bill_type, bill_number)
		    REFERENCES bills(congress, bill_type, bill_number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS bill_sponsors (
		  congress    INTEGER NOT NULL,
		  bill_type   TEXT NOT NULL,
		  bill_number TEXT NOT NULL,
		  seq         INTEGER NOT NULL,
		  full_name   TEXT NOT NULL,
		  first_name  TEXT NOT NULL,
		  last_name   TEXT NOT NULL,
		  party       TEXT NOT NULL,
		  state       TEXT NOT NULL,
		  district    INTEGER,
		  role        TEXT NOT NULL,
		  PRIMARY KEY (congress, bill_type, bill_number, seq),
		  FOREIGN KEY (congress, bill_type, bill_number)
		    REFERENCES bills(congress, bill_type, bill_number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS bill_committees (
		  congress    INTEGER NOT NULL,
		  bill_type   TEXT NOT NULL,
		  bill_number TEXT NOT NULL,
		  seq         INTEGER NOT NULL,
		  name        TEXT NOT NULL,
		  chamber     TEXT NOT NULL,
		  PRIMARY KEY (congress, bill_type, bill_number, seq),
		  FOREIGN KEY (congress, bill_type, bill_number)
		    REFERENCES bills(congress, bill_type, bill_number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS bill_subjects (
		  congress    INTEGER NOT NULL,
		  bill_type   TEXT NOT NULL,
		  bill_number TEXT NOT NULL,
		  seq         INTEGER NOT NULL,
		  name        TEXT NOT NULL,
		  PRIMARY KEY (congress, bill_type, bill_number, seq),
		  FOREIGN KEY (congress, bill_type, bill_number)
		    REFERENCES bills(congress, bill_type, bill_number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS sync_runs (
		  id          TEXT PRIMARY KEY,
		  congress    INTEGER,
		  from_date   TEXT,
		  to_date     TEXT,
		  status      TEXT NOT NULL,
		  listed      INTEGER NOT NULL DEFAULT 0,
		  stored      INTEGER NOT NULL DEFAULT 0,
		  failed      INTEGER NOT NULL DEFAULT 0,
		  started_at  INTEGER NOT NULL,
		  finished_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at
		ON sync_runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS sync_failures (
		  run_id      TEXT NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
		  seq         INTEGER NOT NULL,
		  congress    INTEGER NOT NULL,
		  bill_type   TEXT NOT NULL,
		  bill_number TEXT NOT NULL,
		  code        TEXT NOT NULL,
		  message     TEXT NOT NULL,
		  created_at  INTEGER NOT NULL,
		  PRIMARY KEY (run_id, seq)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
