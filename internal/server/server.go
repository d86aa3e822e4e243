package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"storyscope/internal/story"
)

const shutdownTimeout = 10 * time.Second

// Lister serves pages of the current new stories.
type Lister interface {
	GetNewStories(ctx context.Context, req story.ListingRequest) (story.PagedResult[story.Story], error)
}

type Config struct {
	ProductionMode bool
	// RateLimit is the process-wide request budget per minute; 0 disables it.
	RateLimit int
}

type Server struct {
	stories Lister
	logger  *slog.Logger
	config  Config
	limiter *rate.Limiter
}

func NewServer(stories Lister, logger *slog.Logger, config Config) *Server {
	s := &Server{
		stories: stories,
		logger:  logger,
		config:  config,
	}
	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RateLimit)), config.RateLimit)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/news/getnewstories", s.handleGetNewStories)
	mux.HandleFunc("POST /api/News/GetNewStories", s.handleGetNewStories)
	mux.HandleFunc("GET /api/news/newstories", s.handleListNewStories)
	mux.HandleFunc("GET /rss", s.handleRSS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handle404)

	var h http.Handler = mux
	h = gzipMiddleware(h)
	h = s.rateLimit(h)
	h = s.accessLog(h)
	h = requestID(h)
	h = s.recoverer(h)
	return h
}

func (s *Server) handle404(w http.ResponseWriter, r *http.Request) {
	s.respondWithError(w, r, errNotFound)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
