package ingest

import (
	"context"

	"github.com/kailas-cloud/semsearch/internal/domain/feed"
)

// FeedSource lists and resolves feed items.
type FeedSource interface {
	TopItemIDs(ctx context.Context, limit int) ([]int64, error)
	Item(ctx context.Context, id int64) (feed.Item, error)
}

// Corpus receives ingested documents.
type Corpus interface {
	Append(ctx context.Context, texts ...string) (int64, error)
}
