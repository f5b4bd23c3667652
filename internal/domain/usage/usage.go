package usage

import "time"

// Record is the stored request counter of a single user.
type Record struct {
	userID        string
	requestCount  int64
	lastRequestAt time.Time
}

// NewRecord creates a usage record.
func NewRecord(userID string, count int64, lastRequestAt time.Time) Record {
	return Record{userID: userID, requestCount: count, lastRequestAt: lastRequestAt}
}

// UserID returns the opaque user identity.
func (r *Record) UserID() string { return r.userID }

// RequestCount returns the number of search requests recorded so far.
func (r *Record) RequestCount() int64 { return r.requestCount }

// LastRequestAt returns the time of the latest recorded request.
func (r *Record) LastRequestAt() time.Time { return r.lastRequestAt }

// Report is a user's usage against the request ceiling.
type Report struct {
	record Record
	limit  int64
}

// NewReport pairs a record with the configured ceiling.
func NewReport(r Record, limit int64) Report {
	return Report{record: r, limit: limit}
}

// Record returns the underlying usage record.
func (r *Report) Record() Record { return r.record }

// Limit returns the per-user request ceiling.
func (r *Report) Limit() int64 { return r.limit }

// Remaining returns how many more requests will be served. Never negative.
func (r *Report) Remaining() int64 {
	if left := r.limit - r.record.requestCount; left > 0 {
		return left
	}
	return 0
}

// Exhausted reports whether the next request will be rejected.
func (r *Report) Exhausted() bool { return r.Remaining() == 0 }
