package db

import (
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
-- Last full invoice fetch
CREATE TABLE cached_invoices (
    position INTEGER PRIMARY KEY,
    invoice_key TEXT NOT NULL,
    remote_id TEXT,
    nit TEXT NOT NULL DEFAULT '',
    client_name TEXT NOT NULL DEFAULT '',
    issue_date TEXT,
    series TEXT NOT NULL DEFAULT '',
    number TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL DEFAULT '0'
);

-- Last full payment fetch
CREATE TABLE cached_payments (
    position INTEGER PRIMARY KEY,
    remote_id TEXT NOT NULL,
    invoice_id TEXT NOT NULL DEFAULT '',
    payment_date TEXT,
    receipt TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL DEFAULT '0'
);

-- When each snapshot was taken
CREATE TABLE snapshot_meta (
    kind TEXT PRIMARY KEY,
    item_count INTEGER NOT NULL,
    saved_at TEXT NOT NULL
);

CREATE INDEX idx_cached_invoices_nit ON cached_invoices(nit);
`,
	},
}

// RunMigrations applies all pending cache migrations
func (db *DB) RunMigrations() error {
	// Ensure schema_version table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply pending migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		// Execute migration SQL
		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		// Record migration
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}
