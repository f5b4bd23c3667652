package corpus

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

// store is the consumer interface for the document list (ISP).
type store interface {
	RPush(ctx context.Context, key string, values ...string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Store is the append-only document corpus kept as one list in ingestion order.
// Documents have no identity beyond their text; duplicates are kept.
type Store struct {
	store store
	key   string
}

// New creates a corpus store under prefix+"documents".
func New(s store, prefix string) *Store {
	return &Store{store: s, key: prefix + "documents"}
}

// Append adds documents to the tail and returns the new corpus size.
func (s *Store) Append(ctx context.Context, texts ...string) (int64, error) {
	n, err := s.store.RPush(ctx, s.key, texts...)
	if err != nil {
		return 0, fmt.Errorf("%w: corpus append: %w", domain.ErrBackingStore, err)
	}
	return n, nil
}

// Snapshot returns every document. The returned slice is owned by the caller
// and unaffected by later appends.
func (s *Store) Snapshot(ctx context.Context) ([]string, error) {
	docs, err := s.store.LRange(ctx, s.key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus snapshot: %w", domain.ErrBackingStore, err)
	}
	return docs, nil
}

// Count returns the number of documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.store.LLen(ctx, s.key)
	if err != nil {
		return 0, fmt.Errorf("%w: corpus count: %w", domain.ErrBackingStore, err)
	}
	return n, nil
}

// Page returns up to limit documents starting at offset, plus the corpus size.
func (s *Store) Page(ctx context.Context, offset, limit int) ([]string, int64, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 || int64(offset) >= total {
		return []string{}, total, nil
	}

	docs, err := s.store.LRange(ctx, s.key, int64(offset), int64(offset+limit-1))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: corpus page: %w", domain.ErrBackingStore, err)
	}
	return docs, total, nil
}
