package visited

/*
Visited Set Responsibilities
- Record which URLs a worker has finished a processing attempt on —
  whether the page was stored, robots denied it, or a terminal fetch
  failure gave up on it.
- Offer a batch membership query so a worker can check every link on
  a page in a single round trip.

Re-marking an already-visited URL is idempotent.
*/

import (
	"context"
	"fmt"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

const (
	setKey = "visited:set"
	tsKey  = "visited:ts"
)

type Visited struct {
	client *redis.Client
}

func New(client *redis.Client) *Visited {
	return &Visited{client: client}
}

// IsVisited reports whether url has already been marked.
func (v *Visited) IsVisited(ctx context.Context, url string) (bool, failure.ClassifiedError) {
	ok, err := v.client.SIsMember(ctx, setKey, url).Result()
	if err != nil {
		return false, &VisitedError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return ok, nil
}

// MarkVisited records url as visited at the given time, pipelining the
// set insertion and timestamp write into a single round trip.
func (v *Visited) MarkVisited(ctx context.Context, url string, at time.Time) failure.ClassifiedError {
	pipe := v.client.Pipeline()
	pipe.SAdd(ctx, setKey, url)
	pipe.HSet(ctx, tsKey, url, fmt.Sprintf("%d", at.Unix()))
	if _, err := pipe.Exec(ctx); err != nil {
		return &VisitedError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return nil
}

// HasMany reports visited status for each url in urls, in order, using
// a single SMISMEMBER round trip.
func (v *Visited) HasMany(ctx context.Context, urls []string) ([]bool, failure.ClassifiedError) {
	if len(urls) == 0 {
		return nil, nil
	}
	res, err := v.client.SMIsMember(ctx, setKey, toInterfaceSlice(urls)...).Result()
	if err != nil {
		return nil, &VisitedError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return res, nil
}

// Count returns the cardinality of the visited set.
func (v *Visited) Count(ctx context.Context) (int64, failure.ClassifiedError) {
	n, err := v.client.SCard(ctx, setKey).Result()
	if err != nil {
		return 0, &VisitedError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return n, nil
}

func toInterfaceSlice(urls []string) []interface{} {
	out := make([]interface{}, len(urls))
	for i, u := range urls {
		out[i] = u
	}
	return out
}
