package cmd

import (
	"context"

	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

// redisRobotsCounter adapts the metrics package's free functions to the
// narrow interfaces internal/worker and internal/supervisor depend on.
type redisRobotsCounter struct {
	client *redis.Client
}

func (c redisRobotsCounter) IncrRobotsBlocked(ctx context.Context) failure.ClassifiedError {
	return metrics.IncrRobotsBlocked(ctx, c.client)
}

func getRobotsBlocked(client *redis.Client) func(context.Context) (int64, failure.ClassifiedError) {
	return func(ctx context.Context) (int64, failure.ClassifiedError) {
		return metrics.GetRobotsBlocked(ctx, client)
	}
}

func resetRobotsBlocked(client *redis.Client) func(context.Context) failure.ClassifiedError {
	return func(ctx context.Context) failure.ClassifiedError {
		return metrics.ResetRobotsBlocked(ctx, client)
	}
}
