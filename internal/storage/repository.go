// Package storage provides the keyed byte-store backends the ledger engine
// persists through: a SQLite repository and a file-per-user store. Both hold
// one opaque serialized ledger per user id; interpreting the payload is the
// ledger store's job, not theirs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores one serialized ledger per user id in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs the embedded migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Get returns the stored payload for userID, or (nil, nil) when the user has
// no record yet.
func (r *SQLiteRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM ledgers WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger for %s: %w", userID, err)
	}
	return data, nil
}

// Put upserts the payload for userID.
func (r *SQLiteRepository) Put(ctx context.Context, userID string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		userID, data)
	if err != nil {
		return fmt.Errorf("upsert ledger for %s: %w", userID, err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite", "user_id", userID, "bytes", len(data))
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
