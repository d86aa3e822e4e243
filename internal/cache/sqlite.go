package cache

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"

	"storyscope/internal/database"
)

// SQLiteStore keeps encoded values in the cache_entries table.
type SQLiteStore[T any] struct {
	db    *database.DB
	ttl   time.Duration
	now   Clock
	codec Codec[T]
}

func NewSQLiteStore[T any](db *database.DB, ttl time.Duration) *SQLiteStore[T] {
	return NewSQLiteStoreWithClock[T](db, ttl, time.Now)
}

func NewSQLiteStoreWithClock[T any](db *database.DB, ttl time.Duration, now Clock) *SQLiteStore[T] {
	return &SQLiteStore[T]{
		db:    db,
		ttl:   ttl,
		now:   now,
		codec: JSONCodec[T]{},
	}
}

func (s *SQLiteStore[T]) Get(ctx context.Context, key string) (mo.Option[T], error) {
	raw, err := s.db.GetCacheEntry(ctx, key, s.now())
	if errors.Is(err, database.ErrNotFound) {
		return mo.None[T](), nil
	}
	if err != nil {
		return mo.None[T](), err
	}

	value, err := s.codec.Decode(raw)
	if err != nil {
		return mo.None[T](), nil
	}
	return mo.Some(value), nil
}

// Set writes the entry and sweeps rows that have already expired.
func (s *SQLiteStore[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.db.PutCacheEntry(ctx, key, raw, now.Add(s.ttl)); err != nil {
		return err
	}
	_, err = s.db.DeleteExpired(ctx, now)
	return err
}
