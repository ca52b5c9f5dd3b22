package robots

/*
Robots Policy Cache Responsibilities
- Fetch robots.txt once per host per TTL window, parse it, and cache
  the allow/deny decision surface.
- Fetch failures and HTTP >= 400 responses are swallowed and treated
  as allow-all; the empty text is itself cached so repeated failures
  don't hammer the origin within the TTL.
- Cache reads/writes going through the shared KV store are the only
  error this component propagates — those indicate the store itself is
  unavailable, not a robots.txt peculiarity.
*/

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
	"github.com/temoto/robotstxt"
)

const (
	cacheKey   = "robots:cache"
	tsKey      = "robots:ts"
	DefaultTTL = 24 * time.Hour
)

type Robots struct {
	client     *redis.Client
	httpClient *http.Client
	userAgent  string
	ttl        time.Duration
}

func New(client *redis.Client, userAgent string, ttl time.Duration) *Robots {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Robots{
		client:     client,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  userAgent,
		ttl:        ttl,
	}
}

// IsAllowed reports whether targetURL may be fetched under the
// currently cached robots.txt for its host, refreshing the cache when
// it has aged past the TTL.
func (r *Robots) IsAllowed(ctx context.Context, targetURL string) (bool, failure.ClassifiedError) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return true, nil
	}
	host := parsed.Hostname()

	text, classified := r.loadOrUpdate(ctx, host, robotsURLFor(parsed))
	if classified != nil {
		return true, classified
	}
	if text == "" {
		return true, nil
	}

	data, err := robotstxt.FromBytes([]byte(text))
	if err != nil {
		return true, nil
	}
	return data.TestAgent(parsed.Path, r.userAgent), nil
}

func robotsURLFor(u *url.URL) string {
	robotsURL := *u
	robotsURL.Path = "/robots.txt"
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""
	return robotsURL.String()
}

func (r *Robots) loadOrUpdate(ctx context.Context, host, robotsURL string) (string, failure.ClassifiedError) {
	now := time.Now()

	tsRaw, err := r.client.HGet(ctx, tsKey, host).Result()
	if err != nil && err != redis.Nil {
		return "", &CacheError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	if err == nil {
		if fetchedAt, parseErr := strconv.ParseInt(tsRaw, 10, 64); parseErr == nil {
			if now.Sub(time.Unix(fetchedAt, 0)) < r.ttl {
				cached, cacheErr := r.client.HGet(ctx, cacheKey, host).Result()
				if cacheErr != nil && cacheErr != redis.Nil {
					return "", &CacheError{Message: cacheErr.Error(), Cause: ErrCauseStoreUnavailable}
				}
				return cached, nil
			}
		}
	}

	text := r.fetch(ctx, robotsURL)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, cacheKey, host, text)
	pipe.HSet(ctx, tsKey, host, strconv.FormatInt(now.Unix(), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", &CacheError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}

	return text, nil
}

// fetch retrieves robots.txt, swallowing every failure (transport
// error, non-2xx/3xx status) into an empty allow-all document.
func (r *Robots) fetch(ctx context.Context, robotsURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}
	return string(body)
}
