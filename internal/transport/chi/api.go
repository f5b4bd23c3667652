package chi

import "time"

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeNoDocuments      ErrorCode = "no_documents"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MessageResponse is returned by GET /.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	UserID    string   `json:"user_id"`
	Text      string   `json:"text"`
	TopK      *int     `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// SearchResponse lists matching document texts, best first.
type SearchResponse struct {
	Results []string `json:"results"`
}

// UsageResponse is returned by GET /usage/{user_id}.
type UsageResponse struct {
	UserID        string     `json:"user_id"`
	RequestCount  int64      `json:"request_count"`
	Limit         int64      `json:"limit"`
	Remaining     int64      `json:"remaining"`
	Exhausted     bool       `json:"exhausted"`
	LastRequestAt *time.Time `json:"last_request_at,omitempty"`
}

// DocumentListResponse is one page of the corpus in ingestion order.
type DocumentListResponse struct {
	Total  int64    `json:"total"`
	Offset int      `json:"offset"`
	Items  []string `json:"items"`
}

// ListDocumentsParams are the GET /documents query parameters.
type ListDocumentsParams struct {
	Offset *int `form:"offset,omitempty" json:"offset,omitempty"`
	Limit  *int `form:"limit,omitempty" json:"limit,omitempty"`
}
