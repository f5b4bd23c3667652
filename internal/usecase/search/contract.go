package search

import (
	"context"

	"github.com/kailas-cloud/semsearch/internal/domain/event"
	"github.com/kailas-cloud/semsearch/internal/usecase/ranking"
)

// UsageRecorder counts one request per call and returns the new total.
type UsageRecorder interface {
	RecordRequest(ctx context.Context, userID string) (int64, error)
}

// ResultCache is a best-effort store of ranked results per (user, query).
type ResultCache interface {
	Get(ctx context.Context, userID, text string) ([]string, bool)
	Set(ctx context.Context, userID, text string, results []string)
}

// Corpus provides a consistent copy of all documents.
type Corpus interface {
	Snapshot(ctx context.Context) ([]string, error)
}

// Ranker scores documents against a query.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []string, threshold float64, topK int) ([]ranking.Match, error)
}

// Publisher emits search analytics events.
type Publisher interface {
	Publish(ctx context.Context, e event.Search) error
}
