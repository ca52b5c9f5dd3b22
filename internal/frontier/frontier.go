package frontier

/*
Frontier Responsibilities
- Hold the time-scheduled queue of pending URLs, keyed by a ready-time
  score, in a sorted set shared by every worker process.
- Offer an atomic claim: pop_ready removes due items from storage in
  the same round trip it returns them, so two concurrent callers never
  receive the same URL.

It is a data structure + policy module, not a pipeline executor: it
knows nothing about fetching, extraction, or storage.
*/

import (
	"context"
	"fmt"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

const zsetKey = "frontier:zset"

// popReadyScript atomically removes up to ARGV[1] members scored <=
// ARGV[2] from the sorted set at KEYS[1], one ZRANGEBYSCORE+ZREM pair
// per member so a concurrent claim against the same member never
// double-returns it.
var popReadyScript = redis.NewScript(`
local key = KEYS[1]
local max_count = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local results = {}
local popped = 0
while popped < max_count do
  local items = redis.call('ZRANGEBYSCORE', key, '-inf', now, 'LIMIT', 0, 1)
  if #items == 0 then
    break
  end
  local member = items[1]
  local removed = redis.call('ZREM', key, member)
  if removed == 1 then
    table.insert(results, member)
    popped = popped + 1
  end
end
return results
`)

// Frontier is a thin wrapper over a Redis sorted set holding
// (url, ready_time) pairs.
type Frontier struct {
	client *redis.Client
}

func New(client *redis.Client) *Frontier {
	return &Frontier{client: client}
}

// Push inserts or reschedules a single URL. A URL already present in
// the frontier has its score overwritten (ZADD semantics), so at most
// one entry per URL exists at any time.
func (f *Frontier) Push(ctx context.Context, url string, readyAt time.Time) failure.ClassifiedError {
	return f.PushMany(ctx, []string{url}, readyAt)
}

// PushMany inserts or reschedules many URLs to the same ready_time in
// a single round trip.
func (f *Frontier) PushMany(ctx context.Context, urls []string, readyAt time.Time) failure.ClassifiedError {
	if len(urls) == 0 {
		return nil
	}
	score := float64(readyAt.UnixNano()) / float64(time.Second)
	members := make([]redis.Z, 0, len(urls))
	for _, u := range urls {
		members = append(members, redis.Z{Score: score, Member: u})
	}
	if err := f.client.ZAdd(ctx, zsetKey, members...).Err(); err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return nil
}

// PopReady atomically claims up to maxCount URLs whose ready_time has
// elapsed, removing them from the frontier in the same operation.
func (f *Frontier) PopReady(ctx context.Context, maxCount int) ([]string, failure.ClassifiedError) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	res, err := popReadyScript.Run(ctx, f.client, []string{zsetKey}, maxCount, now).Result()
	if err != nil {
		return nil, &FrontierError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	items, ok := res.([]interface{})
	if !ok {
		return nil, &FrontierError{Message: fmt.Sprintf("unexpected script result type %T", res), Cause: ErrCauseStoreUnavailable}
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		urls = append(urls, s)
	}
	return urls, nil
}

// Size returns the number of entries currently queued.
func (f *Frontier) Size(ctx context.Context) (int64, failure.ClassifiedError) {
	n, err := f.client.ZCard(ctx, zsetKey).Result()
	if err != nil {
		return 0, &FrontierError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return n, nil
}

// Clear removes every pending entry. Used between runs by operators,
// never by the core crawl loop.
func (f *Frontier) Clear(ctx context.Context) failure.ClassifiedError {
	if err := f.client.Del(ctx, zsetKey).Err(); err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return nil
}
