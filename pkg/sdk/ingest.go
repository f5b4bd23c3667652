package semsearch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IngestStats summarizes one ingestion cycle.
type IngestStats struct {
	Listed     int
	Appended   int
	Skipped    int // items without an external link
	Failed     int
	CorpusSize int64
}

// IngestOnce fetches the current top stories once and appends those with a
// link to the corpus. Individual item failures are counted, not returned.
func (c *Client) IngestOnce(ctx context.Context) (_ IngestStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	stats, err := c.ingester.RunOnce(ctx)
	if err != nil {
		return IngestStats{}, fmt.Errorf("ingest: %w", err)
	}
	return IngestStats{
		Listed:     stats.Listed,
		Appended:   stats.Appended,
		Skipped:    stats.Skipped,
		Failed:     stats.Failed,
		CorpusSize: stats.CorpusSize,
	}, nil
}

// RunIngester repeats ingestion cycles until ctx is cancelled.
// Cancellation is a clean stop and returns nil.
func (c *Client) RunIngester(ctx context.Context) error {
	err := c.ingester.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run ingester: %w", err)
	}
	return nil
}

// AddDocuments appends texts to the corpus in order and returns the new
// corpus size. Duplicates are kept.
func (c *Client) AddDocuments(ctx context.Context, texts ...string) (_ int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_documents", start, err) }()

	if len(texts) == 0 {
		_, total, err := c.corpus.Page(ctx, 0, 0)
		if err != nil {
			return 0, fmt.Errorf("add documents: %w", err)
		}
		return total, nil
	}

	n, err := c.corpus.Append(ctx, texts...)
	if err != nil {
		return 0, fmt.Errorf("add documents: %w", err)
	}
	return n, nil
}

// Documents returns up to limit corpus entries starting at offset, in
// ingestion order, plus the corpus size.
func (c *Client) Documents(ctx context.Context, offset, limit int) (_ []string, _ int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("documents", start, err) }()

	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("%w: offset and limit must not be negative", ErrInvalidRequest)
	}
	docs, total, err := c.corpus.Page(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("documents: %w", err)
	}
	return docs, total, nil
}
