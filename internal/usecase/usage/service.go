package usage

import (
	"context"
	"fmt"

	domusage "github.com/kailas-cloud/semsearch/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	records RecordReader
	limit   int64
}

// New creates a Service reporting against the given per-user ceiling.
func New(records RecordReader, limit int64) *Service {
	return &Service{records: records, limit: limit}
}

// GetReport builds a usage report for one user without counting a request.
// Unknown users yield domain.ErrNotFound.
func (s *Service) GetReport(ctx context.Context, userID string) (domusage.Report, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		return domusage.Report{}, fmt.Errorf("get usage: %w", err)
	}
	return domusage.NewReport(rec, s.limit), nil
}
