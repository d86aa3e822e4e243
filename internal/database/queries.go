package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no live cache entry exists for a key.
var ErrNotFound = errors.New("record not found")

// GetCacheEntry returns the stored bytes for key if the entry expires after now.
// Expired rows are deleted on the way out.
func (db *DB) GetCacheEntry(ctx context.Context, key string, now time.Time) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?",
		key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading cache entry %s: %w", key, err)
	}

	if expiresAt <= now.UnixNano() {
		// A concurrent writer may have replaced the row; only drop the stale one.
		if _, err := db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ? AND expires_at = ?",
			key, expiresAt,
		); err != nil {
			return nil, fmt.Errorf("error deleting expired cache entry %s: %w", key, err)
		}
		return nil, ErrNotFound
	}
	return value, nil
}

// PutCacheEntry stores value under key until expiresAt, replacing any previous row.
func (db *DB) PutCacheEntry(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO cache_entries (key, value, expires_at, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            updated_at = excluded.updated_at
    `, key, value, expiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("error writing cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes every entry that expired at or before now.
func (db *DB) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM cache_entries WHERE expires_at <= ?", now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("error deleting expired cache entries: %w", err)
	}
	return res.RowsAffected()
}
