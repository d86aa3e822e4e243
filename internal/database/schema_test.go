package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_SuccessAndTableCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_newdb.db")
	db, err := NewDB(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	var count int
	err = db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cache_entries'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewDB_ReopenKeepsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	db, err := NewDB(dbPath, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, db.PutCacheEntry(ctx, "k", []byte("v"), expires))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetCacheEntry(ctx, "k", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestCacheEntry_Lifecycle(t *testing.T) {
	db, err := NewDB(":memory:", DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	_, err = db.GetCacheEntry(ctx, "missing", now)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.PutCacheEntry(ctx, "k", []byte("first"), now.Add(time.Minute)))
	require.NoError(t, db.PutCacheEntry(ctx, "k", []byte("second"), now.Add(time.Minute)))

	got, err := db.GetCacheEntry(ctx, "k", now)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	_, err = db.GetCacheEntry(ctx, "k", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM cache_entries").Scan(&count))
	assert.Equal(t, 0, count, "expired row should be removed on read")
}

func TestDeleteExpired(t *testing.T) {
	db, err := NewDB(":memory:", DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, db.PutCacheEntry(ctx, "old", []byte("x"), now.Add(-time.Second)))
	require.NoError(t, db.PutCacheEntry(ctx, "live", []byte("y"), now.Add(time.Hour)))

	n, err := db.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = db.GetCacheEntry(ctx, "live", now)
	assert.NoError(t, err)
}
