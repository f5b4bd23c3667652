package semsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "memory", "redis", "goredis" or "badger"
	addrs    []string
	password string
	path     string

	embedder   Embedder
	keyPrefix  string
	maxRequest int64

	feedBaseURL    string
	ingestTopN     int
	ingestInterval time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores state in Redis through rueidis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithGoRedis stores state in Redis through go-redis.
func WithGoRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "goredis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger stores state in an embedded badger database at path.
// An empty path keeps badger in memory.
func WithBadger(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.path = path
	})
}

// WithMemory keeps all state in process memory (default).
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithEmbedder sets the text embedding provider.
// Defaults to a local hashing embedder.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithKeyPrefix namespaces every stored key. Default: "semsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxRequests sets the lifetime search budget per user. Default: 5.
func WithMaxRequests(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRequest = n
	})
}

// WithFeed overrides the Hacker News API root.
func WithFeed(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.feedBaseURL = baseURL
	})
}

// WithIngest sets how many top stories each cycle fetches and the pause
// between cycles. Defaults: 10 stories, one hour.
func WithIngest(topN int, interval time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.ingestTopN = topN
		c.ingestInterval = interval
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
