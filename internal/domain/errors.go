package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed or out-of-range request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals that a user exhausted the request ceiling.
	ErrRateLimited = errors.New("rate limited")
	// ErrNoDocuments signals an empty corpus at ranking time.
	ErrNoDocuments = errors.New("no documents available")
	// ErrBackingStore signals a usage or corpus storage failure.
	ErrBackingStore = errors.New("backing store failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrFeedUnavailable signals a feed source failure during ingestion.
	ErrFeedUnavailable = errors.New("feed unavailable")
)
