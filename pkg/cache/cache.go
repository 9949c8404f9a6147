package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
// Get returns an empty string and a nil error when the key does not exist.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NoopCache never stores anything. It is used when no Redis address is configured.
type NoopCache struct{}

// Get always reports a miss.
func (NoopCache) Get(context.Context, string) (string, error) { return "", nil }

// Set discards the value.
func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

// Delete does nothing.
func (NoopCache) Delete(context.Context, ...string) error { return nil }
