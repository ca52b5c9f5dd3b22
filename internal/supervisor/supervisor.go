package supervisor

/*
Run Supervisor Responsibilities
- Seed the frontier, spawn N workers sharing a stop signal, and
  optionally watch the visited cardinality to stop the run after a
  target page count.
- On exit, compute the run's headline numbers (duration, pages/sec,
  status histogram, robots_blocked) and return them to the caller as a
  RunSummary; writing it to disk is the caller's job.

Grounded on the "sole control-plane authority" shape of the scheduler
this codebase's worker pool descends from: one type owning references
to every collaborator and driving the lifecycle, generalized here from
a single synchronous pipeline to N concurrent goroutines.
*/

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/nullmapper/distcrawler/internal/worker"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/sirupsen/logrus"
)

// VisitedCounter is the subset of internal/visited.Visited the
// supervisor needs to watch a max-pages stop condition.
type VisitedCounter interface {
	Count(ctx context.Context) (int64, failure.ClassifiedError)
}

// Seeder is the subset of internal/frontier.Frontier the supervisor
// needs to push configured seed URLs.
type Seeder interface {
	PushMany(ctx context.Context, urls []string, readyAt time.Time) failure.ClassifiedError
}

// StatusAggregator is the subset of internal/pagestore.Store the
// supervisor needs for the end-of-run status histogram.
type StatusAggregator interface {
	AggregateStatusSince(ctx context.Context, since time.Time) ([]pagestore.StatusCount, failure.ClassifiedError)
}

// MonitorPollInterval is how often the max-pages watchdog checks the
// visited cardinality.
const MonitorPollInterval = 200 * time.Millisecond

// Params configures a single run.
type Params struct {
	SeedURLs    []string
	Concurrency int
	MaxPages    int
	HasMaxPages bool
}

type Supervisor struct {
	seeder             Seeder
	visited            VisitedCounter
	status             StatusAggregator
	getRobotsBlocked   func(ctx context.Context) (int64, failure.ClassifiedError)
	resetRobotsBlocked func(ctx context.Context) failure.ClassifiedError
	log                *logrus.Entry
}

func New(
	seeder Seeder,
	visited VisitedCounter,
	status StatusAggregator,
	getRobotsBlocked func(ctx context.Context) (int64, failure.ClassifiedError),
	resetRobotsBlocked func(ctx context.Context) failure.ClassifiedError,
	log *logrus.Entry,
) *Supervisor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Supervisor{
		seeder:             seeder,
		visited:            visited,
		status:             status,
		getRobotsBlocked:   getRobotsBlocked,
		resetRobotsBlocked: resetRobotsBlocked,
		log:                log,
	}
}

// Run seeds the frontier, starts one goroutine per worker, and blocks
// until every worker stops — either because the caller cancels ctx or
// because the max-pages watchdog fires. It returns the run summary.
func (s *Supervisor) Run(ctx context.Context, params Params, workers []*worker.Worker) (metrics.RunSummary, failure.ClassifiedError) {
	startTime := time.Now()

	if len(params.SeedURLs) > 0 {
		if err := s.seeder.PushMany(ctx, params.SeedURLs, startTime); err != nil {
			return metrics.RunSummary{}, err
		}
	}
	if err := s.resetRobotsBlocked(ctx); err != nil {
		s.log.WithError(err).Warn("failed to reset robots_blocked counter")
	}

	startVisited, err := s.visited.Count(ctx)
	if err != nil {
		return metrics.RunSummary{}, err
	}

	stop := make(chan struct{})
	var closeOnce sync.Once
	signalStop := func() { closeOnce.Do(func() { close(stop) }) }

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker.Worker) {
			defer wg.Done()
			w.Run(ctx, stop)
		}(w)
	}

	if params.HasMaxPages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.monitorMaxPages(ctx, stop, signalStop, startVisited, params.MaxPages)
		}()
	}

	go func() {
		<-ctx.Done()
		signalStop()
	}()

	wg.Wait()

	return s.summarize(ctx, startTime, startVisited)
}

func (s *Supervisor) monitorMaxPages(ctx context.Context, stop <-chan struct{}, signalStop func(), startVisited int64, maxPages int) {
	target := startVisited + int64(maxPages)
	ticker := time.NewTicker(MonitorPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			curr, err := s.visited.Count(ctx)
			if err != nil {
				s.log.WithError(err).Warn("visited count failed during max-pages watch")
				continue
			}
			if curr >= target {
				signalStop()
				return
			}
		}
	}
}

func (s *Supervisor) summarize(ctx context.Context, startTime time.Time, startVisited int64) (metrics.RunSummary, failure.ClassifiedError) {
	endTime := time.Now()
	currVisited, err := s.visited.Count(ctx)
	if err != nil {
		return metrics.RunSummary{}, err
	}
	pagesCrawled := currVisited - startVisited
	if pagesCrawled < 0 {
		pagesCrawled = 0
	}
	duration := endTime.Sub(startTime).Seconds()
	if duration <= 0 {
		duration = 1e-6
	}

	statusCounts := map[string]int64{}
	rows, err := s.status.AggregateStatusSince(ctx, startTime)
	if err != nil {
		s.log.WithError(err).Warn("status histogram aggregation failed")
	} else {
		for _, row := range rows {
			statusCounts[statusKey(row.Status)] = row.Count
		}
	}

	robotsBlocked, err := s.getRobotsBlocked(ctx)
	if err != nil {
		s.log.WithError(err).Warn("robots_blocked read failed")
		robotsBlocked = 0
	}

	return metrics.RunSummary{
		PagesCrawled:    pagesCrawled,
		DurationSeconds: duration,
		PagesPerSecond:  float64(pagesCrawled) / duration,
		StartTs:         float64(startTime.Unix()),
		EndTs:           float64(endTime.Unix()),
		StatusCounts:    statusCounts,
		RobotsBlocked:   robotsBlocked,
	}, nil
}

func statusKey(status int) string {
	return strconv.Itoa(status)
}
