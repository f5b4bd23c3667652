package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based field operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HIncrBy atomically adds delta to an integer field, creating it at 0 first,
	// and returns the new value.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	// Get returns ErrKeyNotFound for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ListStore provides append-only list operations.
type ListStore interface {
	// RPush appends values to the tail and returns the new length.
	RPush(ctx context.Context, key string, values ...string) (int64, error)
	// LRange returns elements in [start, stop], inclusive. Negative indexes
	// count from the tail, so (0, -1) returns the whole list.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
}
