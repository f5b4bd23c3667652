package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/config"
	"github.com/kailas-cloud/semsearch/internal/db"
	dbBadger "github.com/kailas-cloud/semsearch/internal/db/badger"
	dbGoRedis "github.com/kailas-cloud/semsearch/internal/db/goredis"
	dbMemory "github.com/kailas-cloud/semsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/semsearch/internal/db/redis"
	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/metrics"
	"github.com/kailas-cloud/semsearch/internal/repository/corpus"
	"github.com/kailas-cloud/semsearch/internal/repository/embcache"
	"github.com/kailas-cloud/semsearch/internal/repository/resultcache"
	usagerepo "github.com/kailas-cloud/semsearch/internal/repository/usage"
	"github.com/kailas-cloud/semsearch/internal/transport/hackernews"
	"github.com/kailas-cloud/semsearch/internal/transport/hashing"
	"github.com/kailas-cloud/semsearch/internal/transport/kafka"
	langchainEmb "github.com/kailas-cloud/semsearch/internal/transport/langchain"
	openaiEmb "github.com/kailas-cloud/semsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/semsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
	"github.com/kailas-cloud/semsearch/internal/usecase/ingest"
	"github.com/kailas-cloud/semsearch/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/semsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semsearch/internal/usecase/usage"
)

// app holds the wired services shared by the serve and ingest commands.
type app struct {
	store     db.Store
	corpus    *corpus.Store
	search    *searchuc.Service
	usage     *usageuc.Service
	health    *healthuc.Service
	ingester  *ingest.Ingester
	publisher *kafka.Publisher
	logger    *zap.Logger
}

// wire is the composition root.
func wire(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	prefix := cfg.Storage.KeyPrefix
	queryEmb, docEmb, embHealth, err := buildEmbedders(cfg.Embedding, store, prefix, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	docs := corpus.New(store, prefix)
	usageStore := usagerepo.New(store, prefix)
	cache := resultcache.New(store, prefix, metrics.ResultCacheTotal, logger)
	engine := ranking.New(queryEmb, docEmb, domain.CosineSimilarity)

	searchSvc := searchuc.New(usageStore, cache, docs, engine, logger).
		WithMaxRequests(cfg.Search.MaxRequestsPerUser)

	a := &app{
		store:  store,
		corpus: docs,
		search: searchSvc,
		usage:  usageuc.New(usageStore, cfg.Search.MaxRequestsPerUser),
		health: healthuc.New(store, embHealth),
		logger: logger,
	}

	if cfg.Events.Enabled {
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
			Logger:  logger,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		a.publisher = pub
		searchSvc.WithPublisher(pub)
	}

	feed := hackernews.NewClient(hackernews.Config{
		BaseURL: cfg.Ingest.FeedBaseURL,
		Timeout: time.Duration(cfg.Ingest.RequestTimeoutSec) * time.Second,
	})
	a.ingester = ingest.New(feed, docs, ingest.Config{
		TopN:        cfg.Ingest.TopN,
		Interval:    time.Duration(cfg.Ingest.IntervalSec) * time.Second,
		Concurrency: cfg.Ingest.Concurrency,
	}, logger)

	return a, nil
}

// Close releases the publisher and the store.
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Event publisher close failed", zap.Error(err))
		}
	}
	a.store.Close()
}

func openStore(cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	case config.DriverGoRedis:
		s, err := dbGoRedis.NewStore(dbGoRedis.Config{
			Addr:     cfg.Addrs[0],
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create go-redis store: %w", err)
		}
		return s, nil
	case config.DriverBadger:
		s, err := dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.Path,
			InMemory: cfg.Path == "",
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create badger store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedders assembles the decorator chain:
// provider -> Cached -> Instrumented -> Instruction (query and document variants).
// The instrumented embedder doubles as the health checker.
func buildEmbedders(
	cfg config.EmbeddingConfig,
	store db.Store,
	prefix string,
	logger *zap.Logger,
) (query, docs domain.Embedder, health healthuc.EmbeddingChecker, err error) {
	provCfg := cfg.Providers[cfg.Provider]
	model := cfg.Model

	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     provCfg.APIKey,
			BaseURL:    provCfg.BaseURL,
			Model:      model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	case config.ProviderLangchain:
		base, err = langchainEmb.NewEmbedder(&langchainEmb.Config{
			BaseURL:   provCfg.BaseURL,
			Token:     provCfg.APIKey,
			Model:     model,
			BatchSize: cfg.BatchSize,
			Provider:  cfg.Provider,
			Logger:    logger,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create langchain embedder: %w", err)
		}
	case config.ProviderHashing:
		model = "hashing"
		base = hashing.NewEmbedder(cfg.Dimensions)
	default:
		return nil, nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	embedder := base
	if cfg.CacheEnabled {
		embedder = embcache.New(base, store, prefix+model+":", metrics.EmbeddingCacheTotal, logger)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, cfg.BatchSize, logger)

	query, docs = instrumented, instrumented
	if cfg.QueryInstruction != "" {
		query = domain.NewInstructionEmbedder(instrumented, cfg.QueryInstruction)
	}
	if cfg.DocumentInstruction != "" {
		docs = domain.NewInstructionEmbedder(instrumented, cfg.DocumentInstruction)
	}

	logger.Info("Embedders created",
		zap.String("provider", cfg.Provider),
		zap.String("model", model),
		zap.Bool("cache", cfg.CacheEnabled),
	)

	return query, docs, instrumented, nil
}
