package worker_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nullmapper/distcrawler/internal/fetcher"
	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/nullmapper/distcrawler/internal/worker"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/stretchr/testify/require"
)

type fakeFrontier struct {
	ready  []string
	pushed []string
}

func (f *fakeFrontier) PopReady(ctx context.Context, maxCount int) ([]string, failure.ClassifiedError) {
	if len(f.ready) == 0 {
		return nil, nil
	}
	n := maxCount
	if n > len(f.ready) {
		n = len(f.ready)
	}
	out := f.ready[:n]
	f.ready = f.ready[n:]
	return out, nil
}

func (f *fakeFrontier) Push(ctx context.Context, url string, readyAt time.Time) failure.ClassifiedError {
	f.pushed = append(f.pushed, url)
	return nil
}

func (f *fakeFrontier) PushMany(ctx context.Context, urls []string, readyAt time.Time) failure.ClassifiedError {
	f.pushed = append(f.pushed, urls...)
	return nil
}

type fakeVisited struct {
	marked map[string]bool
}

func newFakeVisited() *fakeVisited { return &fakeVisited{marked: map[string]bool{}} }

func (v *fakeVisited) IsVisited(ctx context.Context, url string) (bool, failure.ClassifiedError) {
	return v.marked[url], nil
}

func (v *fakeVisited) MarkVisited(ctx context.Context, url string, at time.Time) failure.ClassifiedError {
	v.marked[url] = true
	return nil
}

func (v *fakeVisited) HasMany(ctx context.Context, urls []string) ([]bool, failure.ClassifiedError) {
	out := make([]bool, len(urls))
	for i, u := range urls {
		out[i] = v.marked[u]
	}
	return out, nil
}

type fakeRateLimiter struct {
	reserved bool
	allowAt  time.Time
}

func (r *fakeRateLimiter) CheckAndReserve(ctx context.Context, domain string, cooldown time.Duration) (time.Time, bool, failure.ClassifiedError) {
	if r.reserved {
		return time.Now(), true, nil
	}
	return r.allowAt, false, nil
}

type fakeRobots struct{ allowed bool }

func (r *fakeRobots) IsAllowed(ctx context.Context, targetURL string) (bool, failure.ClassifiedError) {
	return r.allowed, nil
}

type fakeRobotsCounter struct{ count int }

func (c *fakeRobotsCounter) IncrRobotsBlocked(ctx context.Context) failure.ClassifiedError {
	c.count++
	return nil
}

type fakeSink struct{ saved []pagestore.Page }

func (s *fakeSink) SavePage(ctx context.Context, page pagestore.Page) failure.ClassifiedError {
	s.saved = append(s.saved, page)
	return nil
}

func newWorker(t *testing.T, frontier *fakeFrontier, visited *fakeVisited, rl *fakeRateLimiter, robots *fakeRobots, ctr *fakeRobotsCounter, sink *fakeSink) *worker.Worker {
	t.Helper()
	w := worker.New(frontier, visited, rl, robots, ctr, sink, &http.Client{}, worker.Params{
		UserAgent:           "Test/1.0",
		RequestTimeout:      time.Second,
		MaxContentSizeBytes: 1 << 20,
		DomainCooldown:      time.Second,
	}, nil)
	worker.SetFetchForTest(w, func(ctx context.Context, httpClient *http.Client, targetURL, userAgent string, requestTimeout time.Duration, maxContentSizeBytes int64) (fetcher.Outcome, failure.ClassifiedError) {
		return fetcher.Outcome{StatusCode: 200, ContentType: "text/html", Body: `<html><head><title>T</title></head><body><a href="/a">a</a></body></html>`}, nil
	})
	return w
}

func TestProcessOneReturnsFalseOnEmptyFrontier(t *testing.T) {
	w := newWorker(t, &fakeFrontier{}, newFakeVisited(), &fakeRateLimiter{reserved: true}, &fakeRobots{allowed: true}, &fakeRobotsCounter{}, &fakeSink{})
	require.False(t, w.ProcessOne(context.Background()))
}

func TestProcessOneSkipsAlreadyVisited(t *testing.T) {
	visited := newFakeVisited()
	visited.marked["https://a.com/"] = true
	frontier := &fakeFrontier{ready: []string{"https://a.com/"}}
	sink := &fakeSink{}
	w := newWorker(t, frontier, visited, &fakeRateLimiter{reserved: true}, &fakeRobots{allowed: true}, &fakeRobotsCounter{}, sink)

	require.True(t, w.ProcessOne(context.Background()))
	require.Empty(t, sink.saved)
}

func TestProcessOneRobotsDeniedMarksVisitedNoStore(t *testing.T) {
	frontier := &fakeFrontier{ready: []string{"https://a.com/private"}}
	visited := newFakeVisited()
	ctr := &fakeRobotsCounter{}
	sink := &fakeSink{}
	w := newWorker(t, frontier, visited, &fakeRateLimiter{reserved: true}, &fakeRobots{allowed: false}, ctr, sink)

	require.True(t, w.ProcessOne(context.Background()))
	require.Empty(t, sink.saved)
	require.True(t, visited.marked["https://a.com/private"])
	require.Equal(t, 1, ctr.count)
}

func TestProcessOneNotReservedReschedules(t *testing.T) {
	frontier := &fakeFrontier{ready: []string{"https://a.com/"}}
	rl := &fakeRateLimiter{reserved: false, allowAt: time.Now().Add(time.Second)}
	sink := &fakeSink{}
	w := newWorker(t, frontier, newFakeVisited(), rl, &fakeRobots{allowed: true}, &fakeRobotsCounter{}, sink)

	require.True(t, w.ProcessOne(context.Background()))
	require.Empty(t, sink.saved)
	require.Equal(t, []string{"https://a.com/"}, frontier.pushed)
}

func TestProcessOneFullCycleStoresPageAndPushesUnseenLinks(t *testing.T) {
	frontier := &fakeFrontier{ready: []string{"https://a.com/"}}
	visited := newFakeVisited()
	sink := &fakeSink{}
	w := newWorker(t, frontier, visited, &fakeRateLimiter{reserved: true}, &fakeRobots{allowed: true}, &fakeRobotsCounter{}, sink)

	require.True(t, w.ProcessOne(context.Background()))
	require.Len(t, sink.saved, 1)
	require.Equal(t, "T", sink.saved[0].Title)
	require.True(t, visited.marked["https://a.com/"])
	require.Contains(t, frontier.pushed, "https://a.com/a")
}
