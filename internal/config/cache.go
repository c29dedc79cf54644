package config

import "time"

// CacheConfig defines settings for the Redis response cache placed in front
// of the move-history endpoint.  When Enabled is false or no Redis client is
// configured, responses are never cached.  MaxBodyBytes caps what is stored;
// larger bodies are served but not cached.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads HISTORY_CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("HISTORY_CACHE_ENABLED", true),
		TTL:          positiveDur("HISTORY_CACHE_TTL", 10*time.Second),
		Prefix:       getenv("HISTORY_CACHE_PREFIX", "mesas:cache"),
		MaxBodyBytes: positiveInt("HISTORY_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
