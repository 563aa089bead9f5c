package app

import (
	"strings"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
)

// Cache backends.
const (
	CacheBackendMemory   = "memory"
	CacheBackendDatabase = "database"
	CacheBackendRedis    = "redis"
)

// BackendName returns the normalised backend name, defaulting to memory.
func (c CacheConfig) BackendName() string {
	switch backend := strings.ToLower(strings.TrimSpace(c.Backend)); backend {
	case CacheBackendDatabase, CacheBackendRedis:
		return backend
	default:
		return CacheBackendMemory
	}
}

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}
