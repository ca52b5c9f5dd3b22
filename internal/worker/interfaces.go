package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/nullmapper/distcrawler/internal/fetcher"
	"github.com/nullmapper/distcrawler/pkg/failure"
)

// FrontierStore is the subset of internal/frontier.Frontier the worker
// depends on. Named here (rather than depending on the concrete type
// directly) so tests can substitute an in-memory fake instead of
// dialing Redis.
type FrontierStore interface {
	PopReady(ctx context.Context, maxCount int) ([]string, failure.ClassifiedError)
	Push(ctx context.Context, url string, readyAt time.Time) failure.ClassifiedError
	PushMany(ctx context.Context, urls []string, readyAt time.Time) failure.ClassifiedError
}

// VisitedStore is the subset of internal/visited.Visited the worker
// depends on.
type VisitedStore interface {
	IsVisited(ctx context.Context, url string) (bool, failure.ClassifiedError)
	MarkVisited(ctx context.Context, url string, at time.Time) failure.ClassifiedError
	HasMany(ctx context.Context, urls []string) ([]bool, failure.ClassifiedError)
}

// RateLimiterStore is the subset of internal/ratelimit.RateLimiter the
// worker depends on.
type RateLimiterStore interface {
	CheckAndReserve(ctx context.Context, domain string, cooldown time.Duration) (allowedAt time.Time, reserved bool, classified failure.ClassifiedError)
}

// RobotsChecker is the subset of internal/robots.Robots the worker
// depends on.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, targetURL string) (bool, failure.ClassifiedError)
}

// RobotsBlockedCounter lets the worker bump the shared robots_blocked
// metric without importing the concrete Redis client.
type RobotsBlockedCounter interface {
	IncrRobotsBlocked(ctx context.Context) failure.ClassifiedError
}

// Fetch matches internal/fetcher.Fetch's signature, injected so tests
// can substitute a canned HTTP outcome instead of dialing out.
type Fetch func(ctx context.Context, httpClient *http.Client, targetURL, userAgent string, requestTimeout time.Duration, maxContentSizeBytes int64) (fetcher.Outcome, failure.ClassifiedError)

// Extract matches internal/linkextract.Extract's signature.
type Extract func(base string, html []byte, allowedDomains map[string]struct{}) (title string, links []string, err error)
