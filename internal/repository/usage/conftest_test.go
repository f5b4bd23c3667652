package usage

import (
	"context"
	"time"
)

type mockStore struct {
	hincrbyFn func(ctx context.Context, key, field string, delta int64) (int64, error)
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetallFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	if m.hincrbyFn != nil {
		return m.hincrbyFn(ctx, key, field, delta)
	}
	return 1, nil
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetallFn != nil {
		return m.hgetallFn(ctx, key)
	}
	return map[string]string{}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
