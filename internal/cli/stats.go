package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print frontier size, visited count, and stored page count",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	frontierSize, err := newFrontier(a.redis).Size(ctx)
	if err != nil {
		return err
	}
	visitedCount, err := newVisited(a.redis).Count(ctx)
	if err != nil {
		return err
	}
	pageCount, err := a.pages.CountPages(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("frontier: %d\nvisited:  %d\npages:    %d\n", frontierSize, visitedCount, pageCount)
	return nil
}
