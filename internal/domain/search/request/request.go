package request

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength   = 4096
	MaxUserIDLength  = 256
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// Request is a validated search query. Immutable once built.
type Request struct {
	userID    string
	text      string
	topK      int
	threshold float64
}

// New validates search parameters. A nil topK or threshold takes the default;
// an explicit value must be in range. topK has no upper bound; the corpus
// size bounds the result.
func New(userID, text string, topK *int, threshold *float64) (Request, error) {
	if strings.TrimSpace(userID) == "" {
		return Request{}, fmt.Errorf("user_id is required")
	}
	if len(userID) > MaxUserIDLength {
		return Request{}, fmt.Errorf("user_id too long (max %d chars)", MaxUserIDLength)
	}
	if strings.TrimSpace(text) == "" {
		return Request{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxQueryLength {
		return Request{}, fmt.Errorf("text too long (max %d chars)", MaxQueryLength)
	}

	k := DefaultTopK
	if topK != nil {
		if *topK <= 0 {
			return Request{}, fmt.Errorf("top_k must be a positive integer")
		}
		k = *topK
	}

	th := DefaultThreshold
	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			return Request{}, fmt.Errorf("threshold must be between 0 and 1")
		}
		th = *threshold
	}

	return Request{userID: userID, text: text, topK: k, threshold: th}, nil
}

// UserID returns the caller identity used for rate limiting and caching.
func (r *Request) UserID() string { return r.userID }

// Text returns the raw query text.
func (r *Request) Text() string { return r.text }

// TopK returns the maximum number of results.
func (r *Request) TopK() int { return r.topK }

// Threshold returns the minimum similarity a result must exceed.
func (r *Request) Threshold() float64 { return r.threshold }
