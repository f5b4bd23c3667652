package semsearch

import (
	"context"
	"fmt"
	"time"
)

// UsageReport describes how much of a user's search budget is spent.
type UsageReport struct {
	UserID        string
	RequestCount  int64
	Limit         int64
	Remaining     int64
	Exhausted     bool
	LastRequestAt time.Time
}

// Usage returns the request accounting for userID without consuming a
// request. Users that never searched yield ErrNotFound.
func (c *Client) Usage(ctx context.Context, userID string) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	report, err := c.usageSvc.GetReport(ctx, userID)
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage: %w", err)
	}
	rec := report.Record()

	return UsageReport{
		UserID:        userID,
		RequestCount:  rec.RequestCount(),
		Limit:         report.Limit(),
		Remaining:     report.Remaining(),
		Exhausted:     report.Exhausted(),
		LastRequestAt: rec.LastRequestAt(),
	}, nil
}
