package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. The hit flag lets callers observe cache behaviour. A nil provider
// degrades to computing every time; compute errors are never cached, and a
// failing provider is treated as a miss.
func GetOrCompute(ctx context.Context, provider interfaces.CacheProvider, key string, ttl time.Duration, compute func() (any, error)) (any, bool, error) {
	if provider == nil || key == "" {
		value, err := compute()
		return value, false, err
	}

	if value, err := provider.Get(ctx, key); err == nil {
		return value, true, nil
	}

	value, err := compute()
	if err != nil {
		return nil, false, err
	}
	_ = provider.Set(ctx, key, value, ttl)
	return value, false, nil
}

// Key derives a stable cache signature from the supplied parts, typically the
// document content plus a fingerprint of the resolution options.
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
