package cmd

import (
	"context"
	"fmt"

	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/spf13/cobra"
)

var dumpStatusCmd = &cobra.Command{
	Use:   "dump-status",
	Short: "Write a point-in-time status snapshot to output/status.json and output/dashboard.html",
	RunE:  runDumpStatus,
}

func runDumpStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	status, err := metrics.CollectStatus(ctx, a.redis, a.pages)
	if err != nil {
		return err
	}
	if err := metrics.WriteStatus("output/status.json", "output/dashboard.html", status); err != nil {
		return err
	}

	fmt.Printf("wrote output/status.json and output/dashboard.html (frontier=%d visited=%d pages=%d)\n",
		status.Frontier, status.Visited, status.Pages)
	return nil
}
