package story

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"storyscope/internal/cache"
	"storyscope/internal/metrics"
)

// NewStoriesCacheKey is the single cache slot holding the current stories.
const NewStoriesCacheKey = "new_stories"

// MaxStories caps how many of the newest ids are fetched per refresh.
const MaxStories = 200

// ErrUpstream wraps failures to fetch the story id list.
var ErrUpstream = errors.New("upstream story API unavailable")

type Options struct {
	// MaxStories lowers the fan-out cap; values <= 0 or above MaxStories
	// use MaxStories.
	MaxStories int
	// FetchConcurrency bounds in-flight item fetches; 0 means unbounded.
	FetchConcurrency int
	// SingleFlight lets concurrent cache misses share one refresh.
	SingleFlight bool
}

// Service serves pages of new stories out of a cached snapshot, refreshing
// the snapshot from the upstream when the cache has none.
type Service struct {
	store    cache.Store[[]Story]
	upstream Upstream
	logger   *slog.Logger
	opts     Options
	group    singleflight.Group
}

func NewService(store cache.Store[[]Story], upstream Upstream, logger *slog.Logger, opts Options) *Service {
	if opts.MaxStories <= 0 || opts.MaxStories > MaxStories {
		opts.MaxStories = MaxStories
	}
	return &Service{
		store:    store,
		upstream: upstream,
		logger:   logger,
		opts:     opts,
	}
}

// GetNewStories filters the current stories by req.SearchTerm and returns the
// requested page. Only a failure to fetch the id list is returned as an error.
func (s *Service) GetNewStories(ctx context.Context, req ListingRequest) (PagedResult[Story], error) {
	stories, err := s.newStories(ctx)
	if err != nil {
		return PagedResult[Story]{}, err
	}
	if len(stories) == 0 {
		return PagedResult[Story]{Items: []Story{}, TotalCount: 0}, nil
	}

	filtered := Filter(stories, req.SearchTerm)
	return PagedResult[Story]{
		Items:      Paginate(filtered, req.PageNumber, req.PageSize),
		TotalCount: len(filtered),
	}, nil
}

// Warm loads the cache if it is empty.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.GetNewStories(ctx, NewListingRequest())
	return err
}

func (s *Service) newStories(ctx context.Context) ([]Story, error) {
	cached, err := s.store.Get(ctx, NewStoriesCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "story cache read failed, refreshing", "error", err)
	} else if stories, ok := cached.Get(); ok {
		metrics.RecordCacheLookup(true)
		return stories, nil
	}
	metrics.RecordCacheLookup(false)

	if !s.opts.SingleFlight {
		return s.refreshAndStore(ctx)
	}

	// The shared refresh must not die with whichever caller started it.
	ch := s.group.DoChan(NewStoriesCacheKey, func() (any, error) {
		return s.refreshAndStore(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "joined in-flight story refresh")
		}
		return res.Val.([]Story), nil
	}
}

// refreshAndStore refreshes and writes a non-empty result to the cache. A
// failed write is logged; the fresh stories are still returned.
func (s *Service) refreshAndStore(ctx context.Context) ([]Story, error) {
	stories, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return stories, nil
	}
	if err := s.store.Set(ctx, NewStoriesCacheKey, stories); err != nil {
		s.logger.WarnContext(ctx, "story cache write failed", "error", err)
	}
	return stories, nil
}

func (s *Service) refresh(ctx context.Context) ([]Story, error) {
	start := time.Now()

	ids, err := s.upstream.NewStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching new story ids: %w", ErrUpstream, err)
	}
	if len(ids) == 0 {
		s.logger.InfoContext(ctx, "upstream returned no new story ids")
		return []Story{}, nil
	}
	if len(ids) > s.opts.MaxStories {
		ids = ids[:s.opts.MaxStories]
	}

	stories := fetchItems(ctx, s.upstream, ids, s.opts.FetchConcurrency, s.logger)
	// Items cut short by cancellation are not missing upstream; a partial
	// list must never reach the cache.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refreshing new stories: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RecordRefresh(elapsed.Seconds(), len(stories))
	s.logger.InfoContext(ctx, "refreshed new stories",
		"ids", len(ids),
		"stories", len(stories),
		"dropped", len(ids)-len(stories),
		"duration", elapsed,
	)
	return stories, nil
}
