package materials

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/oxbridge-lms/internal/config"
)

// Cached memoizes resolved URLs in redis.  A presigned link is reused for
// every browser until the cache entry expires, which saves a signing round
// per view and lets the browser's own PDF cache hit.  Redis errors fall
// through to the wrapped resolver.
type Cached struct {
	next   Resolver
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCached(next Resolver, rdb *redis.Client, prefix string, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, prefix: prefix, ttl: ttl}
}

// WithCache wraps r when caching is enabled and redis is available.  urlTTL
// is how long the URLs r hands out stay valid.
func WithCache(r Resolver, rdb *redis.Client, cfg config.CacheConfig, urlTTL time.Duration) Resolver {
	if !cfg.Enabled || rdb == nil {
		return r
	}
	ttl := cfg.EffectiveTTL(urlTTL)
	if ttl <= 0 {
		return r
	}
	return NewCached(r, rdb, cfg.Prefix, ttl)
}

func (c *Cached) key(path string) string {
	sum := sha1.Sum([]byte(path))
	return fmt.Sprintf("%s:material:%x", c.prefix, sum[:])
}

func (c *Cached) Resolve(ctx context.Context, path string) (string, error) {
	key := c.key(path)
	if url, err := c.rdb.Get(ctx, key).Result(); err == nil {
		return url, nil
	}
	url, err := c.next.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	_ = c.rdb.SetEx(ctx, key, url, c.ttl).Err()
	return url, nil
}
