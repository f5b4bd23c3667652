package redis

import (
	"context"

	"github.com/kailas-cloud/semsearch/internal/db"
)

// RPush appends values to the tail of a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	if len(values) == 0 {
		return s.LLen(ctx, key)
	}
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, opError(db.OpRPush, err)
	}
	return n, nil
}

// LRange returns a slice of a list. Redis applies a single-command snapshot,
// so concurrent RPUSH calls are either fully visible or not at all.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, opError(db.OpLRange, err)
	}
	return items, nil
}

// LLen returns the list length; 0 for a missing key.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, opError(db.OpLLen, err)
	}
	return n, nil
}
