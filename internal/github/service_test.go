package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
)

type stubLister struct {
	calls   atomic.Int32
	repos   []Repository
	err     error
	release chan struct{}
}

func (s *stubLister) ListRepos(ctx context.Context, username string) ([]Repository, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.repos, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStore(t *testing.T, now func() time.Time) *cache.MemoryStore {
	t.Helper()
	opts := []cache.MemoryOption{cache.WithSweepInterval(time.Hour)}
	if now != nil {
		opts = append(opts, cache.WithClock(now))
	}
	store := cache.NewMemoryStore(opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestServiceCachesSuccessfulListing(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	lister := &stubLister{repos: []Repository{{Name: "portfolio", Topics: []string{"go"}}}}
	svc := NewService(lister, newStore(t, clk.Now))
	ctx := context.Background()

	first, err := svc.Repos(ctx, "octocat")
	require.NoError(t, err)
	require.Equal(t, "portfolio", first[0].Name)

	clk.Advance(299 * time.Second)
	second, err := svc.Repos(ctx, "octocat")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), lister.calls.Load(), "second call within ttl must not reach upstream")

	clk.Advance(time.Second)
	_, err = svc.Repos(ctx, "octocat")
	require.NoError(t, err)
	require.Equal(t, int32(2), lister.calls.Load(), "expired entries are refetched")
}

func TestServiceNeverCachesFailures(t *testing.T) {
	failure := &FetchError{Kind: KindUpstreamError, Status: 503, Message: "GitHub returned 503"}
	lister := &stubLister{err: failure}
	store := newStore(t, nil)
	svc := NewService(lister, store)
	ctx := context.Background()

	_, err := svc.Repos(ctx, "octocat")
	require.ErrorIs(t, err, failure)
	_, err = svc.Repos(ctx, "octocat")
	require.ErrorIs(t, err, failure)
	require.Equal(t, int32(2), lister.calls.Load())

	_, ok, err := store.Get(ctx, "github_repos:octocat")
	require.NoError(t, err)
	require.False(t, ok)

	lister.err = nil
	lister.repos = []Repository{{Name: "back"}}
	repos, err := svc.Repos(ctx, "octocat")
	require.NoError(t, err)
	require.Equal(t, "back", repos[0].Name)
}

func TestServiceKeysCacheByUsername(t *testing.T) {
	lister := &stubLister{repos: []Repository{{Name: "x"}}}
	svc := NewService(lister, newStore(t, nil), WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := svc.Repos(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Repos(ctx, "bob")
	require.NoError(t, err)
	_, err = svc.Repos(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int32(2), lister.calls.Load())
}

func TestServiceDedupesConcurrentMisses(t *testing.T) {
	lister := &stubLister{repos: []Repository{{Name: "x"}}, release: make(chan struct{})}
	svc := NewService(lister, newStore(t, nil), WithDedupe(true))

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Repos(context.Background(), "octocat")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return lister.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(lister.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.LessOrEqual(t, lister.calls.Load(), int32(5))
	require.GreaterOrEqual(t, lister.calls.Load(), int32(1))
}

func TestServiceWithoutDedupePassesThroughErrors(t *testing.T) {
	lister := &stubLister{err: errors.New("boom")}
	svc := NewService(lister, newStore(t, nil), WithDedupe(false))

	_, err := svc.Repos(context.Background(), "octocat")
	require.EqualError(t, err, "boom")
}

func TestServiceWithClientSecondCallHitsCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, []map[string]any{{"name": "cached", "topics": []string{"go"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, newRecordingTimer())
	svc := NewService(client, newStore(t, nil), WithDedupe(true))

	for i := 0; i < 3; i++ {
		repos, err := svc.Repos(context.Background(), "octocat")
		require.NoError(t, err)
		require.Equal(t, "cached", repos[0].Name)
	}
	require.Equal(t, int32(1), calls.Load())
}
