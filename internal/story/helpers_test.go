package story

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/mo"

	"storyscope/internal/cache"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeStory(id int, title string) Story {
	return Story{ID: id, Title: title}
}

// recordingStore wraps a MemoryStore and counts calls.
type recordingStore struct {
	*cache.MemoryStore[[]Story]
	gets   atomic.Int32
	sets   atomic.Int32
	getErr error
	setErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: cache.NewMemoryStore[[]Story](time.Minute)}
}

func (r *recordingStore) Get(ctx context.Context, key string) (mo.Option[[]Story], error) {
	r.gets.Add(1)
	if r.getErr != nil {
		return mo.None[[]Story](), r.getErr
	}
	return r.MemoryStore.Get(ctx, key)
}

func (r *recordingStore) Set(ctx context.Context, key string, value []Story) error {
	r.sets.Add(1)
	if r.setErr != nil {
		return r.setErr
	}
	return r.MemoryStore.Set(ctx, key, value)
}

func (r *recordingStore) cached() ([]Story, bool) {
	got, _ := r.MemoryStore.Get(context.Background(), NewStoriesCacheKey)
	return got.Get()
}

var errItemFailed = errors.New("item failed")

// fakeUpstream serves ids and items from memory.
type fakeUpstream struct {
	ids      []int
	idsErr   error
	items    map[int]*Story
	failing  map[int]bool
	hanging  map[int]bool
	delay    time.Duration
	release  chan struct{}
	idCalls  atomic.Int32
	itemHits atomic.Int32
	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (f *fakeUpstream) NewStoryIDs(ctx context.Context) ([]int, error) {
	f.idCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

func (f *fakeUpstream) Item(ctx context.Context, id int) (*Story, error) {
	f.itemHits.Add(1)

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.hanging[id] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failing[id] {
		return nil, errItemFailed
	}
	if s, ok := f.items[id]; ok {
		return s, nil
	}
	s := makeStory(id, "Story "+strconv.Itoa(id))
	return &s, nil
}

func (f *fakeUpstream) maxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}

func seq(from, to int) []int {
	ids := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}
