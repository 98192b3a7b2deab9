package config

import "time"

// CacheConfig tunes the redis cache of resolved course material URLs.
// When Enabled is false or no Redis client is configured, every document
// view resolves its URL afresh.  TTL is capped at half the presigned URL
// lifetime so a cached link always has time left when it is handed out.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_ENABLED, CACHE_TTL and CACHE_PREFIX.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("CACHE_PREFIX", "cache"),
	}
}

// EffectiveTTL is the cache lifetime for URLs that expire after urlTTL;
// zero urlTTL means the URLs never expire.
func (c CacheConfig) EffectiveTTL(urlTTL time.Duration) time.Duration {
	ttl := c.TTL
	if urlTTL > 0 && (ttl <= 0 || ttl > urlTTL/2) {
		ttl = urlTTL / 2
	}
	return ttl
}
