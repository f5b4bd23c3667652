package usage

import (
	"context"

	domusage "github.com/kailas-cloud/semsearch/internal/domain/usage"
)

// RecordReader provides read-only access to per-user request counters.
type RecordReader interface {
	Get(ctx context.Context, userID string) (domusage.Record, error)
}
