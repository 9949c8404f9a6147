package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/pkg/cache"
)

// Cache keys of the public rankings.
const (
	cacheKeyTopContributors = "lifelessons:top-contributors:%d:%d"
	cacheKeyMostSaved       = "lifelessons:most-saved"
	cacheKeyFeatured        = "lifelessons:featured"
)

// readThrough returns the cached value of key when present and otherwise
// calls load and stores its result for ttl. Cache failures are logged and
// never fail the read; a zero ttl disables caching.
func readThrough[T any](ctx context.Context, c cache.Cache, ttl time.Duration, logger *zap.Logger, key string, load func() (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return load()
	}

	raw, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if raw != "" {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if payload, err := json.Marshal(value); err == nil {
		if err := c.Set(ctx, key, payload, ttl); err != nil {
			logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

// invalidate drops keys, logging failures.
func invalidate(ctx context.Context, c cache.Cache, logger *zap.Logger, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
