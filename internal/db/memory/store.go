// Package memory implements db.Store in process memory. Nothing survives a restart.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/semsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

// Store implements db.Store with maps and append-only list arenas.
type Store struct {
	mu     sync.RWMutex
	kv     map[string][]byte
	hashes map[string]map[string]string

	lists sync.Map // string -> *arena
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		kv:     make(map[string][]byte),
		hashes: make(map[string]map[string]string),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
	return nil
}

// HGetAll returns a copy of all fields of a hash.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.hashes[key]))
	for f, v := range s.hashes[key] {
		out[f] = v
	}
	return out, nil
}

// HIncrBy atomically increments an integer hash field.
func (s *Store) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}

	var cur int64
	if raw, ok := h[field]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, &db.Error{Op: db.OpHIncrBy, Err: db.ErrWrongType}
		}
		cur = n
	}
	cur += delta
	h[field] = strconv.FormatInt(cur, 10)
	return cur, nil
}

// Get retrieves a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value at key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kv[key] = append([]byte(nil), value...)
	return nil
}

// RPush appends values to the tail of a list.
func (s *Store) RPush(_ context.Context, key string, values ...string) (int64, error) {
	v, _ := s.lists.LoadOrStore(key, newArena())
	return v.(*arena).append(values), nil
}

// LRange copies a window of a list. Readers never block on the writer.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	v, ok := s.lists.Load(key)
	if !ok {
		return []string{}, nil
	}
	return v.(*arena).slice(start, stop), nil
}

// LLen returns the published list length.
func (s *Store) LLen(_ context.Context, key string) (int64, error) {
	v, ok := s.lists.Load(key)
	if !ok {
		return 0, nil
	}
	return int64(len(v.(*arena).view())), nil
}
