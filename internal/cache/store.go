package cache

import (
	"context"
	"time"
)

// Store represents the shared cache interface used across the application.
//
// Implementations must treat missing keys as soft misses rather than errors:
// Get returns (nil, false, nil) and Delete of an absent key succeeds. Callers
// on write paths wrap every operation so a cache outage degrades to a miss or
// a logged no-op, never a failed request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching the supplied glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Increment and Decrement adjust an integer counter, creating it at
	// zero when absent. Decrement never takes a counter below zero.
	Increment(ctx context.Context, key string) (int64, error)
	Decrement(ctx context.Context, key string) (int64, error)
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// ListPush prepends a value to the list at key; ListTrim bounds the
	// list to [start, stop]; ListRange reads the inclusive range.
	ListPush(ctx context.Context, key string, value []byte) error
	ListTrim(ctx context.Context, key string, start, stop int64) error
	ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	Close() error
}
