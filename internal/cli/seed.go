package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [url]...",
	Short: "Push one or more URLs onto the frontier",
	Long: `seed pushes the given URLs onto the shared frontier, ready
immediately. With no arguments it falls back to SEED_URLS from the
loaded configuration.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	urls := args
	if len(urls) == 0 {
		urls = a.cfg.SeedURLs()
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given and SEED_URLS is empty")
	}

	f := newFrontier(a.redis)
	if err := f.PushMany(ctx, urls, time.Now()); err != nil {
		return err
	}

	fmt.Printf("seeded %d url(s)\n", len(urls))
	return nil
}
