package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/domain/event"
	"github.com/kailas-cloud/semsearch/internal/domain/search/request"
	"github.com/kailas-cloud/semsearch/internal/metrics"
	"github.com/kailas-cloud/semsearch/internal/usecase/ranking"
)

// DefaultMaxRequests is the lifetime request ceiling per user.
const DefaultMaxRequests = 5

// Service answers search requests: count, rate-check, cache, rank.
type Service struct {
	usage       UsageRecorder
	cache       ResultCache
	corpus      Corpus
	ranker      Ranker
	maxRequests int64
	publisher   Publisher
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a search service with the default request ceiling.
func New(usage UsageRecorder, cache ResultCache, corpus Corpus, ranker Ranker, logger *zap.Logger) *Service {
	return &Service{
		usage:       usage,
		cache:       cache,
		corpus:      corpus,
		ranker:      ranker,
		maxRequests: DefaultMaxRequests,
		logger:      logger,
		now:         time.Now,
	}
}

// WithMaxRequests overrides the per-user request ceiling.
func (s *Service) WithMaxRequests(n int64) *Service {
	if n > 0 {
		s.maxRequests = n
	}
	return s
}

// WithPublisher attaches an analytics publisher. Publish failures are logged only.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

// Search runs one request. Every call counts against the user's ceiling,
// including the one that gets rejected.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]string, error) {
	start := s.now()

	results, outcome, err := s.search(ctx, req)

	latency := s.now().Sub(start)
	metrics.SearchRequestsTotal.WithLabelValues(string(outcome)).Inc()

	s.logger.Info("Search handled",
		zap.String("user_id", req.UserID()),
		zap.String("query", req.Text()),
		zap.String("outcome", string(outcome)),
		zap.Bool("cache_hit", outcome == event.OutcomeHit),
		zap.Int("results", len(results)),
		zap.Duration("latency", latency),
	)

	s.publish(ctx, req, outcome, len(results), start, latency)

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) search(ctx context.Context, req *request.Request) ([]string, event.Outcome, error) {
	count, err := s.usage.RecordRequest(ctx, req.UserID())
	if err != nil {
		return nil, event.OutcomeError, fmt.Errorf("record request: %w", err)
	}
	if count > s.maxRequests {
		return nil, event.OutcomeRateLimited, fmt.Errorf("user %q made %d requests, limit %d: %w",
			req.UserID(), count, s.maxRequests, domain.ErrRateLimited)
	}

	if cached, ok := s.cache.Get(ctx, req.UserID(), req.Text()); ok {
		return cached, event.OutcomeHit, nil
	}

	docs, err := s.corpus.Snapshot(ctx)
	if err != nil {
		return nil, event.OutcomeError, fmt.Errorf("corpus snapshot: %w", err)
	}
	if len(docs) == 0 {
		return nil, event.OutcomeNoDocuments, domain.ErrNoDocuments
	}

	matches, err := s.ranker.Rank(ctx, req.Text(), docs, req.Threshold(), req.TopK())
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			return nil, event.OutcomeNoDocuments, err
		}
		return nil, event.OutcomeError, fmt.Errorf("rank: %w", err)
	}

	results := ranking.Texts(matches)
	s.cache.Set(ctx, req.UserID(), req.Text(), results)

	return results, event.OutcomeMiss, nil
}

func (s *Service) publish(
	ctx context.Context, req *request.Request, outcome event.Outcome,
	n int, start time.Time, latency time.Duration,
) {
	if s.publisher == nil {
		return
	}
	e := event.Search{
		UserID:      req.UserID(),
		Query:       req.Text(),
		TopK:        req.TopK(),
		Threshold:   req.Threshold(),
		Outcome:     outcome,
		ResultCount: n,
		LatencyMs:   latency.Milliseconds(),
		Timestamp:   start.UTC(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Search event publish failed", zap.String("user_id", req.UserID()), zap.Error(err))
	}
}
