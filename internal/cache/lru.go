package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// LRU bounds the cache to a fixed number of entries with least-recently-used
// eviction. TTLs still apply per entry; eviction on top of expiry keeps the
// memory footprint predictable for long-running hosts.
type LRU struct {
	inner *lru.Cache[string, entry]
	now   func() time.Time
}

// NewLRU constructs a bounded cache holding at most size entries.
func NewLRU(size int) (*LRU, error) {
	inner, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &LRU{
		inner: inner,
		now:   time.Now,
	}, nil
}

func (l *LRU) Get(_ context.Context, key string) (any, error) {
	e, ok := l.inner.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if e.expired(l.now()) {
		l.inner.Remove(key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (l *LRU) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = l.now().Add(ttl)
	}
	l.inner.Add(key, e)
	return nil
}

func (l *LRU) Delete(_ context.Context, key string) error {
	l.inner.Remove(key)
	return nil
}

func (l *LRU) Clear(_ context.Context) error {
	l.inner.Purge()
	return nil
}

var _ interfaces.CacheProvider = (*LRU)(nil)
