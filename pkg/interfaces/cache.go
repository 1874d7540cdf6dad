package interfaces

import (
	"context"
	"time"
)

// CacheProvider is the shared cache contract. Get returns an error on miss so
// callers can distinguish absence from stored nil values. Delete must be
// exact and immediately visible to subsequent callers.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
