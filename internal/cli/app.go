package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nullmapper/distcrawler/internal/config"
	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

// app bundles the shared storage handles every subcommand dials before
// doing its own work.
type app struct {
	cfg   config.Config
	redis *redis.Client
	pages *pagestore.Store
}

// connect loads the environment configuration and dials Redis and
// MongoDB, initializing the page store's indexes. Callers must call
// close when done.
func connect(ctx context.Context) (*app, failure.ClassifiedError) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &cliError{Message: err.Error()}
	}

	opts, err := redis.ParseURL(cfg.RedisURL())
	if err != nil {
		return nil, &cliError{Message: err.Error()}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &cliError{Message: fmt.Sprintf("redis ping failed: %s", err)}
	}

	store, classified := pagestore.Connect(ctx, cfg.MongoURL(), cfg.MongoDB())
	if classified != nil {
		return nil, classified
	}
	if classified := store.Init(ctx); classified != nil {
		return nil, classified
	}

	return &app{cfg: cfg, redis: client, pages: store}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.pages.Close(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: closing page store:", err)
	}
	if err := a.redis.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: closing redis client:", err)
	}
}

// cliError adapts a bare error into a failure.ClassifiedError for
// callers that expect one; every CLI-level failure (bad config,
// connection refused) is non-retryable since retrying an invocation
// the operator just ran is their call, not ours.
type cliError struct {
	Message string
}

func (e *cliError) Error() string            { return e.Message }
func (e *cliError) Severity() failure.Severity { return failure.SeverityFatal }
