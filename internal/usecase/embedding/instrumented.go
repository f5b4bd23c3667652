package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/domain"
	logpkg "github.com/kailas-cloud/semsearch/internal/logger"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// DefaultSlowThreshold is the call latency above which a warning is logged.
const DefaultSlowThreshold = 2 * time.Second

// InstrumentedEmbedder sits between the cache and the ranking engine. It
// splits large batches into provider-sized chunks, pins the vector dimension
// to the first one observed, and logs each call on the request logger.
// Provider metrics (requests, latency, tokens) are recorded by the transports.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	batchSize int
	slow      time.Duration
	dims      atomic.Int64
	fields    []zap.Field
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. batchSize <= 0 selects DefaultMaxAPIBatchSize.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	batchSize int, logger *zap.Logger,
) *InstrumentedEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultMaxAPIBatchSize
	}
	fields := []zap.Field{zap.String("provider", provider), zap.String("model", model)}
	return &InstrumentedEmbedder{
		inner:     inner,
		batchSize: batchSize,
		slow:      DefaultSlowThreshold,
		fields:    fields,
		logger:    logger.With(fields...),
	}
}

// WithSlowThreshold overrides DefaultSlowThreshold. Zero disables slow-call warnings.
func (p *InstrumentedEmbedder) WithSlowThreshold(d time.Duration) *InstrumentedEmbedder {
	p.slow = d
	return p
}

// Dimensions returns the pinned vector dimension, or 0 before the first call.
func (p *InstrumentedEmbedder) Dimensions() int {
	return int(p.dims.Load())
}

// Embed vectorizes one text.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	log := p.log(ctx)
	start := time.Now()

	res, err := p.inner.Embed(ctx, text)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("Embedding request failed", zap.Duration("duration", elapsed), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := p.checkDims(res.Embedding); err != nil {
		log.Error("Embedding has unexpected shape", zap.Error(err))
		return domain.EmbeddingResult{}, err
	}

	p.report(log, "Embedding request completed", elapsed,
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed vectorizes texts in chunks of at most batchSize, preserving input order.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	log := p.log(ctx)
	start := time.Now()

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	chunks := 0
	for lo := 0; lo < len(texts); lo += p.batchSize {
		hi := min(lo+p.batchSize, len(texts))
		res, err := domain.EmbedBatch(ctx, p.inner, texts[lo:hi])
		if err != nil {
			log.Error("Batch embedding request failed",
				zap.Int("chunk_offset", lo),
				zap.Int("chunk_size", hi-lo),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed [%d:%d]: %w", lo, hi, err)
		}
		for j, vec := range res.Embeddings {
			if err := p.checkDims(vec); err != nil {
				log.Error("Embedding has unexpected shape", zap.Int("index", lo+j), zap.Error(err))
				return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed [%d]: %w", lo+j, err)
			}
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
		chunks++
	}

	p.report(log, "Batch embedding completed", time.Since(start),
		zap.Int("texts", len(texts)),
		zap.Int("chunks", chunks),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health: %w", err)
	}
	return nil
}

// checkDims rejects empty vectors and vectors whose length differs from the
// first one seen. Cosine over mismatched lengths is meaningless.
func (p *InstrumentedEmbedder) checkDims(vec []float32) error {
	n := int64(len(vec))
	if n == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrEmbeddingProviderError)
	}
	if p.dims.CompareAndSwap(0, n) {
		return nil
	}
	if want := p.dims.Load(); want != n {
		return fmt.Errorf("%w: got %d dimensions, want %d", domain.ErrEmbeddingProviderError, n, want)
	}
	return nil
}

// log prefers the request-scoped logger so embedding lines carry the request id.
func (p *InstrumentedEmbedder) log(ctx context.Context) *zap.Logger {
	if l := logpkg.FromContextOr(ctx, nil); l != nil {
		return l.With(p.fields...)
	}
	return p.logger
}

func (p *InstrumentedEmbedder) report(log *zap.Logger, msg string, elapsed time.Duration, fields ...zap.Field) {
	fields = append(fields, zap.Duration("duration", elapsed))
	if p.slow > 0 && elapsed > p.slow {
		log.Warn(msg+" slowly", fields...)
		return
	}
	log.Debug(msg, fields...)
}
