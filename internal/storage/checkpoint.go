// Package storage persists the client-side state that must survive a
// restart: a single key-value checkpoint table in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const savingsCheckpointKey = "savings_last_update"

// CheckpointRepository stores named epoch-millisecond checkpoints.
type CheckpointRepository struct {
	db *sql.DB
}

// NewCheckpointRepository opens (creating if needed) the SQLite database
// at dbPath and runs migrations.
func NewCheckpointRepository(dbPath string) (*CheckpointRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &CheckpointRepository{db: db}, nil
}

// LastUpdate returns the savings checkpoint, or ok=false when none has
// been written yet.
func (r *CheckpointRepository) LastUpdate(ctx context.Context) (time.Time, bool, error) {
	var epochMs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT epoch_ms FROM checkpoints WHERE name = ?`, savingsCheckpointKey,
	).Scan(&epochMs)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	return time.UnixMilli(epochMs), true, nil
}

// SetLastUpdate writes the savings checkpoint. The stored value never
// decreases: an older timestamp than the current one is a no-op.
func (r *CheckpointRepository) SetLastUpdate(ctx context.Context, t time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO checkpoints (name, epoch_ms) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET epoch_ms = MAX(epoch_ms, excluded.epoch_ms)`,
		savingsCheckpointKey, t.UnixMilli())
	if err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}

	slog.DebugContext(ctx, "Checkpoint written",
		"name", savingsCheckpointKey,
		"epoch_ms", t.UnixMilli())
	return nil
}

// Close closes the underlying database.
func (r *CheckpointRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
