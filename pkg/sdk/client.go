package semsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/db"
	dbBadger "github.com/kailas-cloud/semsearch/internal/db/badger"
	dbGoRedis "github.com/kailas-cloud/semsearch/internal/db/goredis"
	dbMemory "github.com/kailas-cloud/semsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/semsearch/internal/db/redis"
	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/domain/search/request"
	domusage "github.com/kailas-cloud/semsearch/internal/domain/usage"
	"github.com/kailas-cloud/semsearch/internal/metrics"
	"github.com/kailas-cloud/semsearch/internal/repository/corpus"
	"github.com/kailas-cloud/semsearch/internal/repository/resultcache"
	usagerepo "github.com/kailas-cloud/semsearch/internal/repository/usage"
	"github.com/kailas-cloud/semsearch/internal/transport/hackernews"
	"github.com/kailas-cloud/semsearch/internal/transport/hashing"
	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
	"github.com/kailas-cloud/semsearch/internal/usecase/ingest"
	"github.com/kailas-cloud/semsearch/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/semsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semsearch/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "semsearch:"
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]string, error)
}

type usageUseCase interface {
	GetReport(ctx context.Context, userID string) (domusage.Report, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type ingestUseCase interface {
	RunOnce(ctx context.Context) (ingest.CycleStats, error)
	Run(ctx context.Context) error
}

type corpusStore interface {
	Append(ctx context.Context, texts ...string) (int64, error)
	Page(ctx context.Context, offset, limit int) ([]string, int64, error)
}

// Client is the semsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	corpus    corpusStore
	searchSvc searchUseCase
	usageSvc  usageUseCase
	healthSvc healthUseCase
	ingester  ingestUseCase
	obs       *observer
}

// New creates a Client and connects to the configured store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		keyPrefix:  defaultKeyPrefix,
		maxRequest: searchuc.DefaultMaxRequests,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("semsearch: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return dbMemory.NewStore(), nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("semsearch: create redis store: %w", err)
		}
		return s, nil
	case "goredis":
		if len(cfg.addrs) == 0 {
			return nil, fmt.Errorf("semsearch: database address required for go-redis")
		}
		s, err := dbGoRedis.NewStore(dbGoRedis.Config{
			Addr:     cfg.addrs[0],
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("semsearch: create go-redis store: %w", err)
		}
		return s, nil
	case "badger":
		s, err := dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.path,
			InMemory: cfg.path == "",
			Logger:   zap.NewNop(),
		})
		if err != nil {
			return nil, fmt.Errorf("semsearch: create badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("semsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Internal services log through zap; SDK callers observe through slog.
	logger := zap.NewNop()

	var emb domain.Embedder = hashing.NewEmbedder(hashing.DefaultDimensions)
	if cfg.embedder != nil {
		emb = adaptEmbedder(cfg.embedder)
	}

	docs := corpus.New(store, cfg.keyPrefix)
	usageStore := usagerepo.New(store, cfg.keyPrefix)
	cache := resultcache.New(store, cfg.keyPrefix, metrics.ResultCacheTotal, logger)

	searchSvc := searchuc.New(usageStore, cache, docs, ranking.New(emb, emb, domain.CosineSimilarity), logger).
		WithMaxRequests(cfg.maxRequest)

	feed := hackernews.NewClient(hackernews.Config{BaseURL: cfg.feedBaseURL})
	ingester := ingest.New(feed, docs, ingest.Config{
		TopN:     cfg.ingestTopN,
		Interval: cfg.ingestInterval,
	}, logger)

	var checker healthuc.EmbeddingChecker
	if hc, ok := emb.(healthuc.EmbeddingChecker); ok {
		checker = hc
	}

	return &Client{
		store:     store,
		corpus:    docs,
		searchSvc: searchSvc,
		usageSvc:  usageuc.New(usageStore, cfg.maxRequest),
		healthSvc: healthuc.New(store, checker),
		ingester:  ingester,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
