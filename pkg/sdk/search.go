package semsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/domain/search/request"
)

// SearchOptions tunes a single search. Zero values select the defaults
// (top 5 results, similarity above 0.5).
type SearchOptions struct {
	// TopK caps the number of results.
	TopK int
	// Threshold is the minimum similarity a document must exceed.
	// Nil keeps the default; use Float to set an explicit zero.
	Threshold *float64
}

// Float returns a pointer to v, for SearchOptions.Threshold.
func Float(v float64) *float64 { return &v }

// Search ranks the corpus against text on behalf of userID and returns the
// matching document texts, best first. Each call consumes one request from
// the user's budget; ErrRateLimited is returned once it is spent and
// ErrNoDocuments while the corpus is empty. opts may be nil.
func (c *Client) Search(ctx context.Context, userID, text string, opts *SearchOptions) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var (
		topK      *int
		threshold *float64
	)
	if opts != nil {
		if opts.TopK > 0 {
			topK = &opts.TopK
		}
		threshold = opts.Threshold
	}

	req, err := request.New(userID, text, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	results, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}
