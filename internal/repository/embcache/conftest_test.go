package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/db"
	"github.com/kailas-cloud/semsearch/internal/domain"
)

// memoryKV is a map-backed store that records every access.
type memoryKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	sets    int
	getErr  error
	setErr  error
	setKeys []string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryKV) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.setKeys = append(m.setKeys, key)
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// textEmbedder maps each text to a one-element vector holding its length.
// Every embedded text costs tokensPerText tokens.
type textEmbedder struct {
	mu            sync.Mutex
	tokensPerText int
	fail          error
	embedded      []string
	batches       [][]string
}

func (e *textEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return domain.EmbeddingResult{}, e.fail
	}
	e.embedded = append(e.embedded, text)
	return domain.EmbeddingResult{
		Embedding:    vectorFor(text),
		PromptTokens: e.tokensPerText,
		TotalTokens:  e.tokensPerText,
	}, nil
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text))}
}

// batchTextEmbedder adds native batching on top of textEmbedder.
type batchTextEmbedder struct {
	textEmbedder
}

func (e *batchTextEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return domain.BatchEmbeddingResult{}, e.fail
	}
	e.batches = append(e.batches, append([]string(nil), texts...))
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		out.Embeddings[i] = vectorFor(text)
		out.PromptTokens += e.tokensPerText
		out.TotalTokens += e.tokensPerText
	}
	return out, nil
}

type healthyTextEmbedder struct {
	textEmbedder
	healthErr error
}

func (e *healthyTextEmbedder) HealthCheck(context.Context) error { return e.healthErr }

var errProvider = errors.New("provider down")

func newCacheCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_embedding_cache_total",
	}, []string{"result"})
}

func newCached(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *memoryKV, *prometheus.CounterVec) {
	t.Helper()
	kv := newMemoryKV()
	counter := newCacheCounter()
	return New(inner, kv, "semsearch:test:", counter, zap.NewNop()), kv, counter
}

func sha256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// gatedEmbedder blocks inside Embed until release is closed and records
// whether the context it was handed had been cancelled by then.
type gatedEmbedder struct {
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	calls  int
	ctxErr error
}

func newGatedEmbedder() *gatedEmbedder {
	return &gatedEmbedder{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
	}
	<-g.release

	g.mu.Lock()
	g.ctxErr = ctx.Err()
	g.mu.Unlock()
	if ctx.Err() != nil {
		return domain.EmbeddingResult{}, ctx.Err()
	}
	return domain.EmbeddingResult{Embedding: vectorFor(text), TotalTokens: 1}, nil
}
