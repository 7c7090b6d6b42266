package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/facturas/internal/db"
)

// SnapshotRepo is a SQLite implementation of the snapshot repositories
type SnapshotRepo struct {
	db *db.DB
}

// NewSnapshotRepo creates a new SnapshotRepo
func NewSnapshotRepo(database *db.DB) *SnapshotRepo {
	return &SnapshotRepo{db: database}
}

// Info returns metadata for a snapshot kind, or nil if none was saved
func (r *SnapshotRepo) Info(ctx context.Context, kind string) (*SnapshotInfo, error) {
	query := `
		SELECT kind, item_count, saved_at
		FROM snapshot_meta
		WHERE kind = ?
	`

	info := &SnapshotInfo{}
	var savedAt string

	err := r.db.QueryRowContext(ctx, query, kind).Scan(&info.Kind, &info.Count, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot info: %w", err)
	}

	if info.SavedAt, err = parseTime(savedAt); err != nil {
		return nil, fmt.Errorf("failed to parse saved_at: %w", err)
	}

	return info, nil
}

// Clear removes every snapshot
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"cached_invoices", "cached_payments", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func touchMeta(ctx context.Context, tx *sql.Tx, kind string, count int) error {
	query := `
		INSERT OR REPLACE INTO snapshot_meta (kind, item_count, saved_at)
		VALUES (?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, kind, count, formatTime()); err != nil {
		return fmt.Errorf("failed to record %s snapshot: %w", kind, err)
	}
	return nil
}
