package story

import (
	"context"
	"log/slog"
	"sync"
)

// fetchItems fetches every id and returns the stories that came back, in id
// order. Failed and absent items are dropped. concurrency bounds in-flight
// requests; 0 starts them all at once.
func fetchItems(ctx context.Context, upstream Upstream, ids []int, concurrency int, logger *slog.Logger) []Story {
	results := make([]*Story, len(ids))

	var sem chan struct{}
	if concurrency > 0 && concurrency < len(ids) {
		sem = make(chan struct{}, concurrency)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		if sem != nil {
			sem <- struct{}{}
		}
		go func() {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			s, err := upstream.Item(ctx, id)
			if err != nil {
				logger.DebugContext(ctx, "dropping story", "id", id, "error", err)
				return
			}
			results[i] = s
		}()
	}
	wg.Wait()

	stories := make([]Story, 0, len(ids))
	for _, s := range results {
		if s != nil {
			stories = append(stories, *s)
		}
	}
	return stories
}
