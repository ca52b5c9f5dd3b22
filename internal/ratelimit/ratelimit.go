package ratelimit

/*
Per-Domain Rate Limiter Responsibilities
- Hold a next-allowed-fetch timestamp per host in a shared hash.
- Offer an atomic check-and-reserve: read the current timestamp and,
  if due, advance it by cooldown in the same server-side step, so two
  concurrent reservations for the same host never both succeed.

Host is the lowercase hostname component of a URL, with no port.
www. stripping is intentionally NOT performed here — see the link
extractor's allowed-domains filter for where that stripping does
apply — so this component keys on the actual DNS host.
*/

import (
	"context"
	"strconv"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

const hashKey = "rate:domains"

// checkAndReserveScript reads the next-allowed timestamp for a domain
// and, if now has reached it (or no record exists), advances it by
// cooldown and reports the reservation as granted.
var checkAndReserveScript = redis.NewScript(`
local key = KEYS[1]
local domain = ARGV[1]
local now = tonumber(ARGV[2])
local cooldown = tonumber(ARGV[3])
local next_ts = redis.call('HGET', key, domain)
if not next_ts then
  redis.call('HSET', key, domain, now + cooldown)
  return {tostring(now), 1}
end
next_ts = tonumber(next_ts)
if next_ts <= now then
  redis.call('HSET', key, domain, now + cooldown)
  return {tostring(now), 1}
else
  return {tostring(next_ts), 0}
end
`)

type RateLimiter struct {
	client *redis.Client
}

func New(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckAndReserve attempts to claim the next fetch slot for domain.
// When reserved is true, the caller may fetch immediately. When false,
// allowedAt names the time at or after which the next attempt may
// succeed.
func (r *RateLimiter) CheckAndReserve(ctx context.Context, domain string, cooldown time.Duration) (allowedAt time.Time, reserved bool, classified failure.ClassifiedError) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	res, err := checkAndReserveScript.Run(ctx, r.client, []string{hashKey}, domain, now, cooldown.Seconds()).Result()
	if err != nil {
		return time.Time{}, false, &RateLimitError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	items, ok := res.([]interface{})
	if !ok || len(items) != 2 {
		return time.Time{}, false, &RateLimitError{Message: "unexpected script result shape", Cause: ErrCauseStoreUnavailable}
	}
	ts, err := parseFloat(items[0])
	if err != nil {
		return time.Time{}, false, &RateLimitError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	grantedRaw, err := parseFloat(items[1])
	if err != nil {
		return time.Time{}, false, &RateLimitError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	secs := int64(ts)
	nanos := int64((ts - float64(secs)) * float64(time.Second))
	return time.Unix(secs, nanos), grantedRaw == 1, nil
}

func parseFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case int64:
		return float64(t), nil
	default:
		return 0, &RateLimitError{Message: "unrecognized numeric type", Cause: ErrCauseStoreUnavailable}
	}
}
