package main

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/metrics"
)

func ingestCommand(c *cli.Context) error {
	cfg, logger, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Register()

	a, err := wire(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.ingester.RunOnce(c.Context)
	if err != nil {
		return err
	}

	logger.Info("Ingestion finished",
		zap.Int("listed", stats.Listed),
		zap.Int("appended", stats.Appended),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int64("corpus_size", stats.CorpusSize),
	)
	return nil
}
