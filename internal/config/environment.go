package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Cache backends understood by the server.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

const DefaultAPIBaseURL = "https://hacker-news.firebaseio.com/v0"

type Config struct {
	Port             int
	APIBaseURL       string
	CacheTTL         time.Duration
	CacheBackend     string
	RedisURL         string
	DBPath           string
	MaxStories       int
	FetchConcurrency int
	UpstreamTimeout  time.Duration
	SingleFlight     bool
	RateLimit        int // requests per minute, 0 disables
	LogLevel         slog.Level
	ProductionMode   bool
}

func GetConfig() Config {
	config := Config{
		Port:            8080, // default port
		APIBaseURL:      DefaultAPIBaseURL,
		CacheTTL:        5 * time.Minute,
		CacheBackend:    CacheMemory,
		RedisURL:        "redis://localhost:6379/0",
		DBPath:          "data/storyscope.db",
		MaxStories:      200,
		UpstreamTimeout: 10 * time.Second,
		SingleFlight:    true,
		RateLimit:       100,
		LogLevel:        slog.LevelInfo,
	}

	// Override with environment variables if present
	if port := os.Getenv("STORYSCOPE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}

	if base := os.Getenv("STORYSCOPE_API_BASE_URL"); base != "" {
		config.APIBaseURL = strings.TrimRight(base, "/")
	}

	if ttl := os.Getenv("STORYSCOPE_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			config.CacheTTL = d
		}
	}

	if backend := os.Getenv("STORYSCOPE_CACHE_BACKEND"); backend != "" {
		config.CacheBackend = strings.ToLower(strings.TrimSpace(backend))
	}

	if redisURL := os.Getenv("STORYSCOPE_REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	if dbPath := os.Getenv("STORYSCOPE_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	if n := os.Getenv("STORYSCOPE_MAX_STORIES"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			config.MaxStories = min(v, 200)
		}
	}

	if n := os.Getenv("STORYSCOPE_FETCH_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v >= 0 {
			config.FetchConcurrency = v
		}
	}

	if timeout := os.Getenv("STORYSCOPE_UPSTREAM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			config.UpstreamTimeout = d
		}
	}

	if sf := os.Getenv("STORYSCOPE_SINGLE_FLIGHT"); sf != "" {
		if b, err := strconv.ParseBool(sf); err == nil {
			config.SingleFlight = b
		}
	}

	if limit := os.Getenv("STORYSCOPE_RATE_LIMIT"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v >= 0 {
			config.RateLimit = v
		}
	}

	if level := os.Getenv("STORYSCOPE_LOG_LEVEL"); level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err == nil {
			config.LogLevel = l
		}
	}

	return config
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api base url %q", ErrInvalidConfig, c.APIBaseURL)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheSQLite:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
