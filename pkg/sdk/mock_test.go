package semsearch

import (
	"context"

	"github.com/kailas-cloud/semsearch/internal/domain/search/request"
	domusage "github.com/kailas-cloud/semsearch/internal/domain/usage"
	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
	"github.com/kailas-cloud/semsearch/internal/usecase/ingest"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) ([]string, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]string, error) {
	return m.searchFn(ctx, req)
}

// --- usageUseCase mock ---

type mockUsageUC struct {
	getFn func(ctx context.Context, userID string) (domusage.Report, error)
}

func (m *mockUsageUC) GetReport(ctx context.Context, userID string) (domusage.Report, error) {
	return m.getFn(ctx, userID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- ingestUseCase mock ---

type mockIngestUC struct {
	runOnceFn func(ctx context.Context) (ingest.CycleStats, error)
	runFn     func(ctx context.Context) error
}

func (m *mockIngestUC) RunOnce(ctx context.Context) (ingest.CycleStats, error) {
	return m.runOnceFn(ctx)
}

func (m *mockIngestUC) Run(ctx context.Context) error {
	return m.runFn(ctx)
}

// --- corpusStore mock ---

type mockCorpus struct {
	appendFn func(ctx context.Context, texts ...string) (int64, error)
	pageFn   func(ctx context.Context, offset, limit int) ([]string, int64, error)
}

func (m *mockCorpus) Append(ctx context.Context, texts ...string) (int64, error) {
	return m.appendFn(ctx, texts...)
}

func (m *mockCorpus) Page(ctx context.Context, offset, limit int) ([]string, int64, error) {
	return m.pageFn(ctx, offset, limit)
}

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}
