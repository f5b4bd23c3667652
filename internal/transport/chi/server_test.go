package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/db/memory"
	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/metrics"
	"github.com/kailas-cloud/semsearch/internal/repository/corpus"
	"github.com/kailas-cloud/semsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/semsearch/internal/repository/usage"
	"github.com/kailas-cloud/semsearch/internal/transport/hashing"
	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
	"github.com/kailas-cloud/semsearch/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/semsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semsearch/internal/usecase/usage"
)

type testEnv struct {
	handler http.Handler
	corpus  *corpus.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	docs := corpus.New(store, "t:")
	usageStore := usage.New(store, "t:")
	emb := hashing.NewEmbedder(256)

	searchSvc := searchuc.New(
		usageStore,
		resultcache.New(store, "t:", metrics.ResultCacheTotal, zap.NewNop()),
		docs,
		ranking.New(emb, emb, nil),
		zap.NewNop(),
	)
	srv := NewServer(
		searchSvc,
		usageuc.New(usageStore, searchuc.DefaultMaxRequests),
		healthuc.New(store, emb),
		docs,
		zap.NewNop(),
	).WithPagination(2, 3)

	r := chi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(zap.NewNop()))
	return &testEnv{handler: Handler(srv, Options{BaseRouter: r}), corpus: docs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, docs ...string) {
	t.Helper()
	if _, err := e.corpus.Append(context.Background(), docs...); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[MessageResponse](t, rec); got.Message != WelcomeMessage {
		t.Errorf("message = %q", got.Message)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[HealthResponse](t, rec)
	if !slices.Contains(healthuc.Phrases, got.Status) {
		t.Errorf("status = %q, want one of %v", got.Status, healthuc.Phrases)
	}
	if got.Checks["database"] != "ok" || got.Checks["embedding"] != "ok" {
		t.Errorf("checks = %v", got.Checks)
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck_DegradedStill200(t *testing.T) {
	srv := NewServer(nil, nil, healthuc.New(downPinger{}, nil), nil, zap.NewNop())
	rec := httptest.NewRecorder()
	Handler(srv, Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[HealthResponse](t, rec); got.Checks["database"] != "error" {
		t.Errorf("checks = %v, want database error", got.Checks)
	}
}

func TestSearch_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Rust 1.0 released - https://a", "Cooking tips - https://b")

	rec := env.do(t, http.MethodPost, "/search", `{"user_id":"u1","text":"Rust released","threshold":0.1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[SearchResponse](t, rec)
	if len(got.Results) != 1 || got.Results[0] != "Rust 1.0 released - https://a" {
		t.Errorf("results = %v", got.Results)
	}
	if rec.Header().Get("X-Embedding-Tokens") == "" {
		t.Error("expected X-Embedding-Tokens on a ranked response")
	}

	// repeat is served from cache without embedding
	rec = env.do(t, http.MethodPost, "/search", `{"user_id":"u1","text":"Rust released","threshold":0.1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Embedding-Tokens") != "" {
		t.Error("cache hit should not report embedding tokens")
	}
}

func TestSearch_EmptyResultsIsArray(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Cooking tips - https://b")

	rec := env.do(t, http.MethodPost, "/search", `{"user_id":"u1","text":"quantum"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestSearch_NoDocuments(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/search", `{"user_id":"u1","text":"anything"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	got := decode[ErrorResponse](t, rec)
	if got.Code != ErrorCodeNoDocuments || got.Message != "No documents found" {
		t.Errorf("error = %+v", got)
	}
}

func TestSearch_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "doc - https://d")

	for i, text := range []string{"a", "b", "c", "d", "e"} {
		rec := env.do(t, http.MethodPost, "/search", `{"user_id":"u2","text":"`+text+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	rec := env.do(t, http.MethodPost, "/search", `{"user_id":"u2","text":"f"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request: status = %d, want 429", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != ErrorCodeRateLimited {
		t.Errorf("code = %q", got.Code)
	}
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed json", `{"user_id":`, ErrorCodeBadRequest},
		{"missing user", `{"text":"q"}`, ErrorCodeValidationFailed},
		{"missing text", `{"user_id":"u"}`, ErrorCodeValidationFailed},
		{"zero top_k", `{"user_id":"u","text":"q","top_k":0}`, ErrorCodeValidationFailed},
		{"threshold above 1", `{"user_id":"u","text":"q","threshold":1.5}`, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestSearch_ValidationDoesNotCount(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/search", `{"user_id":"u3","text":""}`)

	rec := env.do(t, http.MethodGet, "/usage/u3", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for a user with no counted requests", rec.Code)
	}
}

func TestGetUsage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "doc - https://d")
	for _, text := range []string{"a", "b"} {
		env.do(t, http.MethodPost, "/search", `{"user_id":"u4","text":"`+text+`"}`)
	}

	rec := env.do(t, http.MethodGet, "/usage/u4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[UsageResponse](t, rec)
	if got.UserID != "u4" || got.RequestCount != 2 || got.Limit != 5 || got.Remaining != 3 || got.Exhausted {
		t.Errorf("usage = %+v", got)
	}
	if got.LastRequestAt == nil {
		t.Error("expected last_request_at")
	}

	// reading usage does not count
	rec = env.do(t, http.MethodGet, "/usage/u4", "")
	if got := decode[UsageResponse](t, rec); got.RequestCount != 2 {
		t.Errorf("request_count = %d after a usage read, want 2", got.RequestCount)
	}
}

func TestGetUsage_Unknown(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/usage/nobody", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != ErrorCodeNotFound {
		t.Errorf("code = %q", got.Code)
	}
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "d0", "d1", "d2", "d3", "d4")

	tests := []struct {
		name  string
		query string
		items []string
	}{
		{"default page", "", []string{"d0", "d1"}},
		{"offset", "?offset=3", []string{"d3", "d4"}},
		{"limit clamped to max", "?limit=50", []string{"d0", "d1", "d2"}},
		{"past the end", "?offset=10", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/documents"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			got := decode[DocumentListResponse](t, rec)
			if got.Total != 5 {
				t.Errorf("total = %d, want 5", got.Total)
			}
			if !slices.Equal(got.Items, tt.items) {
				t.Errorf("items = %v, want %v", got.Items, tt.items)
			}
		})
	}
}

func TestListDocuments_BadParams(t *testing.T) {
	env := newTestEnv(t)
	for _, q := range []string{"?offset=abc", "?limit=x", "?offset=-1", "?limit=0"} {
		rec := env.do(t, http.MethodGet, "/documents"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleDomainError_Mapping(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, zap.NewNop())
	tests := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited},
		{domain.ErrNoDocuments, http.StatusNotFound, ErrorCodeNoDocuments},
		{domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound},
		{domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed},
		{domain.ErrBackingStore, http.StatusInternalServerError, ErrorCodeInternalError},
		{errors.New("boom: secret detail"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.handleDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		body := rec.Body.String()
		if got := decode[ErrorResponse](t, rec); got.Code != tt.code {
			t.Errorf("%v: code = %q, want %q", tt.err, got.Code, tt.code)
		}
		if strings.Contains(body, "secret") {
			t.Errorf("internal detail leaked: %s", body)
		}
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != ErrorCodeInternalError {
		t.Errorf("code = %q", got.Code)
	}
}
