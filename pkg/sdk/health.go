package semsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/semsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // a short liveness phrase
	Checks map[string]string // component → "ok"/"error"
}

// Healthy reports whether every component check passed.
func (h HealthStatus) Healthy() bool {
	for _, v := range h.Checks {
		if v != string(healthuc.CheckOK) {
			return false
		}
	}
	return true
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: report.Status,
		Checks: checks,
	}
}
