package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/semsearch/internal/domain"
	domusage "github.com/kailas-cloud/semsearch/internal/domain/usage"
)

// Hash field names of a user record.
const (
	fieldRequestCount    = "request_count"
	fieldLastRequestTime = "last_request_time"
)

// store is the consumer interface for usage counters (ISP).
type store interface {
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Store keeps one hash per user: {request_count, last_request_time}.
// Counters only grow; nothing resets or expires them.
type Store struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a usage store. prefix namespaces keys, e.g. "semsearch:".
func New(s store, prefix string) *Store {
	return &Store{store: s, prefix: prefix, now: time.Now}
}

func (s *Store) key(userID string) string {
	return s.prefix + "user:" + userID
}

// RecordRequest atomically increments the user's counter and stamps the
// request time. Returns the post-increment count.
func (s *Store) RecordRequest(ctx context.Context, userID string) (int64, error) {
	key := s.key(userID)

	count, err := s.store.HIncrBy(ctx, key, fieldRequestCount, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: usage HINCRBY %s: %w", domain.ErrBackingStore, key, err)
	}

	ts := strconv.FormatFloat(float64(s.now().UnixMicro())/1e6, 'f', 6, 64)
	if err := s.store.HSet(ctx, key, map[string]string{fieldLastRequestTime: ts}); err != nil {
		return 0, fmt.Errorf("%w: usage HSET %s: %w", domain.ErrBackingStore, key, err)
	}

	return count, nil
}

// Get returns the stored record. Unknown users yield domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (domusage.Record, error) {
	key := s.key(userID)

	m, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return domusage.Record{}, fmt.Errorf("%w: usage HGETALL %s: %w", domain.ErrBackingStore, key, err)
	}
	raw, ok := m[fieldRequestCount]
	if !ok {
		return domusage.Record{}, fmt.Errorf("user %q: %w", userID, domain.ErrNotFound)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domusage.Record{}, fmt.Errorf("%w: usage %s: bad request_count %q", domain.ErrBackingStore, key, raw)
	}

	var last time.Time
	if ts, ok := m[fieldLastRequestTime]; ok {
		if sec, err := strconv.ParseFloat(ts, 64); err == nil {
			last = time.UnixMicro(int64(sec * 1e6))
		}
	}

	return domusage.NewRecord(userID, count, last), nil
}
