package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storyscope/internal/cache"
	"storyscope/internal/config"
	"storyscope/internal/database"
	"storyscope/internal/server"
	"storyscope/internal/story"
)

const warmTimeout = 30 * time.Second

var (
	// Version will be set during build
	Version = "dev"

	// Command line flags
	port     = flag.Int("port", 0, "Port to run the server on (default: 8080 or STORYSCOPE_PORT)")
	apiURL   = flag.String("api", "", "Base URL of the story API (default: Hacker News or STORYSCOPE_API_BASE_URL)")
	cacheTTL = flag.Duration("cache-ttl", 0, "How long fetched stories are served from cache (default: 5m or STORYSCOPE_CACHE_TTL)")
	backend  = flag.String("cache", "", "Cache backend: memory, redis or sqlite (default: memory or STORYSCOPE_CACHE_BACKEND)")
	dbPath   = flag.String("db", "", "Path to the sqlite cache file (default: data/storyscope.db or STORYSCOPE_DB_PATH)")
	version  = flag.Bool("version", false, "Print version information")
	prodMode = flag.Bool("prod", false, "Enable production mode (hides internal error details)")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Storyscope version %s\n", Version)
		return
	}

	cfg := config.GetConfig()

	// Override with command line flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *cacheTTL > 0 {
		cfg.CacheTTL = *cacheTTL
	}
	if *backend != "" {
		cfg.CacheBackend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	cfg.ProductionMode = *prodMode

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("storyscope exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("starting storyscope",
		"version", Version,
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
		"cache", cfg.CacheBackend,
		"cache_ttl", cfg.CacheTTL,
		"mode", map[bool]string{true: "production", false: "development"}[cfg.ProductionMode],
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing cache store failed", "error", err)
		}
	}()

	svc := story.NewService(
		store,
		story.NewClient(cfg.APIBaseURL, cfg.UpstreamTimeout, Version),
		logger,
		story.Options{
			MaxStories:       cfg.MaxStories,
			FetchConcurrency: cfg.FetchConcurrency,
			SingleFlight:     cfg.SingleFlight,
		},
	)

	// A cold cache is not fatal; the first request refreshes it.
	warmCtx, cancel := context.WithTimeout(ctx, warmTimeout)
	if err := svc.Warm(warmCtx); err != nil {
		logger.Warn("initial story fetch failed", "error", err)
	}
	cancel()

	srv := server.NewServer(svc, logger, server.Config{
		ProductionMode: cfg.ProductionMode,
		RateLimit:      cfg.RateLimit,
	})
	return srv.Run(ctx, cfg.GetAddress())
}

// openStore builds the configured cache engine and returns a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (cache.Store[[]story.Story], func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		store, err := cache.NewRedisStoreWithURL[[]story.Story](cfg.RedisURL, "storyscope:", cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("connecting to redis: %w", err), store.Close())
		}
		return store, store.Close, nil

	case config.CacheSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return cache.NewSQLiteStore[[]story.Story](db, cfg.CacheTTL), db.Close, nil

	default:
		return cache.NewMemoryStore[[]story.Story](cfg.CacheTTL), func() error { return nil }, nil
	}
}
