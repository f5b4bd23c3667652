package health

import (
	"context"
	"math/rand/v2"
)

// Phrases are the liveness messages reported as the health status.
var Phrases = []string{"API is active", "Server is up", "Running smoothly"}

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
// Status is a liveness phrase; component state lives in Checks.
type Report struct {
	Status string
	Checks map[string]CheckResult
}

// Healthy reports whether every component check passed.
func (r Report) Healthy() bool {
	for _, v := range r.Checks {
		if v == CheckError {
			return false
		}
	}
	return true
}

// StorePinger is the backing store liveness probe.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker probes the embedding provider. Providers without a probe
// are simply not listed in the report.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	db        StorePinger
	embedding EmbeddingChecker
	pick      func(n int) int
}

// New creates a Service. embedding can be nil.
func New(db StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{db: db, embedding: embedding, pick: rand.IntN}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	return Report{Status: Phrases[s.pick(len(Phrases))], Checks: checks}
}
