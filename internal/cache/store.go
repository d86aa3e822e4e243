// Package cache holds time-bounded key/value stores used to keep upstream
// results between requests.
package cache

import (
	"context"
	"time"

	"github.com/samber/mo"
)

// Store keeps values of one type under string keys with a fixed TTL.
// Get reports an expired, missing or undecodable entry as mo.None.
// Implementations must be safe for concurrent use.
type Store[T any] interface {
	Get(ctx context.Context, key string) (mo.Option[T], error)
	Set(ctx context.Context, key string, value T) error
}

// Clock returns the current time. Stores accept one so tests can move time.
type Clock func() time.Time
