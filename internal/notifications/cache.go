package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cache access wrappers. A nil store or a store error degrades to a miss or
// a logged no-op so the durable write path never depends on cache health.

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.store == nil {
		return nil, false
	}
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return value, ok
}

func (s *Service) cacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheDelete(ctx context.Context, keys ...string) {
	if s.store == nil || len(keys) == 0 {
		return
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.log.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Service) cacheIncrement(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Increment(ctx, key); err != nil {
		s.log.Warn("cache increment failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheDecrement(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Decrement(ctx, key); err != nil {
		s.log.Warn("cache decrement failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheListPush(ctx context.Context, key string, value []byte) {
	if s.store == nil {
		return
	}
	if err := s.store.ListPush(ctx, key, value); err != nil {
		s.log.Warn("cache list push failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheListTrim(ctx context.Context, key string, start, stop int64) {
	if s.store == nil {
		return
	}
	if err := s.store.ListTrim(ctx, key, start, stop); err != nil {
		s.log.Warn("cache list trim failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheListRange(ctx context.Context, key string, start, stop int64) [][]byte {
	if s.store == nil {
		return nil
	}
	values, err := s.store.ListRange(ctx, key, start, stop)
	if err != nil {
		s.log.Warn("cache list range failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return values
}
