package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/nullmapper/distcrawler/internal/supervisor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	runConcurrency int
	runMaxPages    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the crawl and block until it stops",
	Long: `run seeds the frontier with SEED_URLS, starts CONCURRENCY worker
goroutines, and blocks until either MAX_PAGES pages have been crawled
or the process receives SIGINT/SIGTERM. A run summary is written to
output/metrics.json on exit.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "override CONCURRENCY for this run")
	runCmd.Flags().IntVar(&runMaxPages, "max-pages", 0, "override MAX_PAGES for this run (0 keeps the configured value)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	concurrency := a.cfg.Concurrency()
	if runConcurrency > 0 {
		concurrency = runConcurrency
	}
	maxPages, hasMaxPages := a.cfg.MaxPages()
	if runMaxPages > 0 {
		maxPages, hasMaxPages = runMaxPages, true
	}

	workers := newWorkers(a, concurrency)

	sup := supervisor.New(
		newFrontier(a.redis),
		newVisited(a.redis),
		a.pages,
		getRobotsBlocked(a.redis),
		resetRobotsBlocked(a.redis),
		logrus.NewEntry(logrus.StandardLogger()),
	)

	summary, classified := sup.Run(ctx, supervisor.Params{
		SeedURLs:    a.cfg.SeedURLs(),
		Concurrency: concurrency,
		MaxPages:    maxPages,
		HasMaxPages: hasMaxPages,
	}, workers)
	if classified != nil {
		return classified
	}

	if err := metrics.WriteRunSummary("output/metrics.json", summary); err != nil {
		return err
	}

	fmt.Printf("crawled %d page(s) in %.1fs (%.2f pages/sec), robots_blocked=%d\n",
		summary.PagesCrawled, summary.DurationSeconds, summary.PagesPerSecond, summary.RobotsBlocked)
	return nil
}
