package metrics

import (
	"context"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

// RobotsBlockedKey is the shared counter incremented whenever a worker
// skips a URL because robots.txt denies it.
const RobotsBlockedKey = "metrics:robots_blocked"

// IncrRobotsBlocked bumps the shared robots_blocked counter. Failures
// here are always recoverable: the worker must never abort a crawl
// cycle over a lost metric write.
func IncrRobotsBlocked(ctx context.Context, client *redis.Client) failure.ClassifiedError {
	if err := client.Incr(ctx, RobotsBlockedKey).Err(); err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return nil
}

// ResetRobotsBlocked zeroes the counter at the start of a run.
func ResetRobotsBlocked(ctx context.Context, client *redis.Client) failure.ClassifiedError {
	if err := client.Set(ctx, RobotsBlockedKey, 0, 0).Err(); err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return nil
}

// GetRobotsBlocked reads the counter, treating an absent key as zero.
func GetRobotsBlocked(ctx context.Context, client *redis.Client) (int64, failure.ClassifiedError) {
	n, err := client.Get(ctx, RobotsBlockedKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	return n, nil
}
