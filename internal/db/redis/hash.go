package redis

import (
	"context"

	"github.com/kailas-cloud/semsearch/internal/db"
)

// HSet writes the given fields; an empty map is a no-op.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	pairs := s.b().Hset().Key(key).FieldValue()
	for field, value := range fields {
		pairs = pairs.FieldValue(field, value)
	}
	if err := s.do(ctx, pairs.Build()).Error(); err != nil {
		return opError(db.OpHSet, err)
	}
	return nil
}

// HGetAll returns every field of a hash; a missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, opError(db.OpHGetAll, err)
	}
	return fields, nil
}

// HIncrBy increments an integer field server-side and returns the new value.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.do(ctx, s.b().Hincrby().Key(key).Field(field).Increment(delta).Build()).AsInt64()
	if err != nil {
		return 0, opError(db.OpHIncrBy, err)
	}
	return n, nil
}
