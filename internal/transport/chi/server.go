package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/semsearch/internal/logger"
	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/semsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semsearch/internal/usecase/usage"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the semantic document search API"

// Page size bounds for GET /documents.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// DocumentLister pages through the corpus.
type DocumentLister interface {
	Page(ctx context.Context, offset, limit int) ([]string, int64, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search API.
type Server struct {
	search          *searchuc.Service
	usage           *usageuc.Service
	health          *healthuc.Service
	documents       DocumentLister
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	documents DocumentLister,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:          search,
		usage:           usage,
		health:          health,
		documents:       documents,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests,
			ErrorCodeRateLimited, "Too many requests, please try again later."),
		sentinelHandler(domain.ErrNoDocuments, http.StatusNotFound, ErrorCodeNoDocuments, "No documents found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound, "Not found"),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed, "Invalid request"),
	}
	return s
}

// WithPagination overrides the GET /documents page sizes.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: WelcomeMessage})
}

// HealthCheck handles GET /health. Always 200; failing components show in checks.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: report.Status,
		Checks: checks,
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(body.UserID, body.Text, body.TopK, body.Threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if results == nil {
		results = []string{}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetUsage handles GET /usage/{user_id}. It does not count as a request.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, userID string) {
	report, err := s.usage.GetReport(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec := report.Record()
	resp := UsageResponse{
		UserID:       rec.UserID(),
		RequestCount: rec.RequestCount(),
		Limit:        report.Limit(),
		Remaining:    report.Remaining(),
		Exhausted:    report.Exhausted(),
	}
	if last := rec.LastRequestAt(); !last.IsZero() {
		utc := last.UTC()
		resp.LastRequestAt = &utc
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request, params ListDocumentsParams) {
	offset := derefInt(params.Offset)
	if offset < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "offset must be non-negative")
		return
	}

	limit := s.defaultPageSize
	if params.Limit != nil {
		if *params.Limit <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = min(*params.Limit, s.maxPageSize)
	}

	items, total, err := s.documents.Page(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []string{}
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Total:  total,
		Offset: offset,
		Items:  items,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees only message, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "Internal Server Error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
