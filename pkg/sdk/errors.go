package semsearch

import "github.com/kailas-cloud/semsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRateLimited            = domain.ErrRateLimited
	ErrNoDocuments            = domain.ErrNoDocuments
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrNotFound               = domain.ErrNotFound
	ErrBackingStore           = domain.ErrBackingStore
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrFeedUnavailable        = domain.ErrFeedUnavailable
)
