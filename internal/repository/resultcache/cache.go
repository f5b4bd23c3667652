package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/db"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache stores ranked result lists per (user, query text). Entries never
// expire. Every failure degrades to a miss; none reaches the caller.
type Cache struct {
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), may be nil.
func New(s store, prefix string, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		prefix:     prefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Key composes the cache key. The user id is length-prefixed so that no
// (user, text) pair can collide with another.
func (c *Cache) Key(userID, text string) string {
	return c.prefix + "cache:" + strconv.Itoa(len(userID)) + ":" + userID + ":" + text
}

// Get returns the cached results and true, or nil and false on a miss.
// An empty cached list is a hit.
func (c *Cache) Get(ctx context.Context, userID, text string) ([]string, bool) {
	key := c.Key(userID, text)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.inc("miss")
		} else {
			c.inc("error")
			c.logger.Warn("Failed to read cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var results []string
	if err := json.Unmarshal(data, &results); err != nil || results == nil {
		c.inc("error")
		c.logger.Warn("Failed to decode cached results", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	c.inc("hit")
	return results, true
}

// Set stores results, overwriting any previous entry. Best-effort.
func (c *Cache) Set(ctx context.Context, userID, text string, results []string) {
	key := c.Key(userID, text)
	if results == nil {
		results = []string{}
	}

	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
