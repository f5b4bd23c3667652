package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/metrics"
)

// Match is a document that scored above the threshold.
type Match struct {
	Text  string
	Score float64
}

// Texts drops the scores, keeping rank order.
func Texts(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out
}

// Engine scores a corpus snapshot against a query. It holds no shared state.
type Engine struct {
	query      Embedder
	docs       Embedder
	similarity domain.SimilarityFunc
}

// New creates an engine. query and docs may be the same embedder; they differ
// when the model expects separate query and document instructions.
// A nil similarity selects domain.CosineSimilarity.
func New(query, docs Embedder, similarity domain.SimilarityFunc) *Engine {
	if similarity == nil {
		similarity = domain.CosineSimilarity
	}
	return &Engine{query: query, docs: docs, similarity: similarity}
}

// Rank returns at most topK documents whose similarity to query is strictly
// greater than threshold, best first. Equal scores keep corpus order.
// An empty corpus yields domain.ErrNoDocuments.
func (e *Engine) Rank(
	ctx context.Context, query string, docs []string, threshold float64, topK int,
) ([]Match, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	start := time.Now()
	defer func() { metrics.RankDuration.Observe(time.Since(start).Seconds()) }()

	usage := domain.UsageFromContext(ctx)

	q, err := e.query.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	usage.AddTokens(q.TotalTokens)

	batch, err := domain.EmbedBatch(ctx, e.docs, docs)
	if err != nil {
		return nil, fmt.Errorf("vectorize documents: %w", err)
	}
	usage.AddTokens(batch.TotalTokens)

	matches := make([]Match, 0, len(docs))
	for i, vec := range batch.Embeddings {
		score := e.similarity(q.Embedding, vec)
		if score > threshold {
			matches = append(matches, Match{Text: docs[i], Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}
