package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/semsearch/internal/domain/feed"
	"github.com/kailas-cloud/semsearch/internal/metrics"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultTopN        = 10
	DefaultInterval    = time.Hour
	DefaultConcurrency = 4
)

// Config controls one ingestion cycle and the pause between cycles.
type Config struct {
	TopN        int
	Interval    time.Duration
	Concurrency int
}

// CycleStats summarizes one fetch cycle.
type CycleStats struct {
	Listed     int
	Appended   int
	Skipped    int
	Failed     int
	CorpusSize int64
}

// Ingester pulls the top feed items into the corpus, then sleeps.
// Items are appended every cycle; nothing is deduplicated.
type Ingester struct {
	source FeedSource
	corpus Corpus
	cfg    Config
	logger *zap.Logger
}

// New creates an Ingester.
func New(source FeedSource, corpus Corpus, cfg Config, logger *zap.Logger) *Ingester {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Ingester{source: source, corpus: corpus, cfg: cfg, logger: logger}
}

// Run fetches immediately, then once per interval, until ctx is cancelled.
// Cycle failures are logged and never stop the loop.
func (i *Ingester) Run(ctx context.Context) error {
	i.logger.Info("Ingester started",
		zap.Int("top_n", i.cfg.TopN),
		zap.Duration("interval", i.cfg.Interval),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("Ingester stopped")
			return nil
		case <-timer.C:
		}

		stats, err := i.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				i.logger.Info("Ingester stopped mid-cycle")
				return nil
			}
			i.logger.Error("Ingestion cycle failed", zap.Error(err))
		} else {
			i.logger.Info("Ingestion cycle completed",
				zap.Int("listed", stats.Listed),
				zap.Int("appended", stats.Appended),
				zap.Int("skipped", stats.Skipped),
				zap.Int("failed", stats.Failed),
				zap.Int64("corpus_size", stats.CorpusSize),
			)
		}

		timer.Reset(i.cfg.Interval)
	}
}

// RunOnce performs a single fetch cycle. Items are fetched concurrently and
// appended in feed order. Per-item failures are counted, not returned; an
// error means the item list itself could not be fetched or ctx ended.
func (i *Ingester) RunOnce(ctx context.Context) (CycleStats, error) {
	ids, err := i.source.TopItemIDs(ctx, i.cfg.TopN)
	if err != nil {
		metrics.IngestCyclesTotal.WithLabelValues("failed").Inc()
		return CycleStats{}, fmt.Errorf("list top items: %w", err)
	}
	if len(ids) > i.cfg.TopN {
		ids = ids[:i.cfg.TopN]
	}

	items, errs := i.fetchAll(ctx, ids)
	stats := CycleStats{Listed: len(ids)}

	for n, id := range ids {
		if err := ctx.Err(); err != nil {
			metrics.IngestCyclesTotal.WithLabelValues("failed").Inc()
			return stats, fmt.Errorf("ingest cancelled: %w", err)
		}

		if errs[n] != nil {
			stats.Failed++
			metrics.IngestItemsTotal.WithLabelValues("failed").Inc()
			i.logger.Warn("Feed item fetch failed", zap.Int64("item_id", id), zap.Error(errs[n]))
			continue
		}

		item := items[n]
		if !item.HasLink() {
			stats.Skipped++
			metrics.IngestItemsTotal.WithLabelValues("skipped").Inc()
			i.logger.Debug("Feed item has no link", zap.Int64("item_id", id))
			continue
		}

		size, err := i.corpus.Append(ctx, item.Text())
		if err != nil {
			stats.Failed++
			metrics.IngestItemsTotal.WithLabelValues("failed").Inc()
			i.logger.Warn("Corpus append failed", zap.Int64("item_id", id), zap.Error(err))
			continue
		}

		stats.Appended++
		stats.CorpusSize = size
		metrics.IngestItemsTotal.WithLabelValues("appended").Inc()
	}

	if stats.Appended > 0 {
		metrics.CorpusDocuments.Set(float64(stats.CorpusSize))
	}
	metrics.IngestCyclesTotal.WithLabelValues("ok").Inc()

	return stats, nil
}

// fetchAll resolves ids with bounded concurrency. Results are index-aligned with ids.
func (i *Ingester) fetchAll(ctx context.Context, ids []int64) ([]feed.Item, []error) {
	items := make([]feed.Item, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(i.cfg.Concurrency)

	for n, id := range ids {
		g.Go(func() error {
			item, err := i.source.Item(ctx, id)
			if err != nil {
				errs[n] = err
				return nil
			}
			items[n] = item
			return nil
		})
	}
	_ = g.Wait() // goroutines report through errs

	return items, errs
}
