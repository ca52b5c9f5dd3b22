package cmd

import (
	"net/http"

	"github.com/nullmapper/distcrawler/internal/config"
	"github.com/nullmapper/distcrawler/internal/frontier"
	"github.com/nullmapper/distcrawler/internal/ratelimit"
	"github.com/nullmapper/distcrawler/internal/robots"
	"github.com/nullmapper/distcrawler/internal/visited"
	"github.com/nullmapper/distcrawler/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newFrontier(client *redis.Client) *frontier.Frontier { return frontier.New(client) }

func newVisited(client *redis.Client) *visited.Visited { return visited.New(client) }

func newRateLimiter(client *redis.Client) *ratelimit.RateLimiter { return ratelimit.New(client) }

func newRobots(client *redis.Client, cfg config.Config) *robots.Robots {
	return robots.New(client, cfg.UserAgent(), robots.DefaultTTL)
}

// newWorkers builds one *worker.Worker per slot, each with its own
// *http.Client, sharing every other collaborator.
func newWorkers(a *app, n int) []*worker.Worker {
	f := newFrontier(a.redis)
	v := newVisited(a.redis)
	rl := newRateLimiter(a.redis)
	rb := newRobots(a.redis, a.cfg)
	ctr := redisRobotsCounter{client: a.redis}

	params := worker.Params{
		UserAgent:           a.cfg.UserAgent(),
		RequestTimeout:      a.cfg.RequestTimeout(),
		MaxContentSizeBytes: a.cfg.MaxContentSizeBytes(),
		DomainCooldown:      a.cfg.DomainCooldown(),
		AllowedDomains:      a.cfg.AllowedDomains(),
	}

	workers := make([]*worker.Worker, n)
	for i := range workers {
		log := logrus.NewEntry(logrus.StandardLogger()).WithField("worker", i)
		httpClient := &http.Client{Transport: newWorkerTransport(n)}
		workers[i] = worker.New(f, v, rl, rb, ctr, a.pages, httpClient, params, log)
	}
	return workers
}

// newWorkerTransport gives a worker its own connection pool rather than
// sharing http.DefaultTransport, so one worker's idle connections to a
// slow host never starve another's. Pool size tracks concurrency: a
// worker never needs more idle connections to a single host than the
// total number of workers sharing it.
func newWorkerTransport(concurrency int) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = concurrency
	transport.MaxIdleConnsPerHost = concurrency
	return transport
}
