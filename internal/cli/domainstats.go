package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	domainStatsLimit int
	domainStatsJSON  bool
)

var domainStatsCmd = &cobra.Command{
	Use:   "domain-stats",
	Short: "Print the top hosts by frontier, visited, and stored-page count",
	RunE:  runDomainStats,
}

func init() {
	domainStatsCmd.Flags().IntVar(&domainStatsLimit, "limit", 20, "max hosts to show per breakdown")
	domainStatsCmd.Flags().BoolVar(&domainStatsJSON, "json", false, "print as JSON instead of a table")
}

func runDomainStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	stats, err := metrics.CollectDomainStats(ctx, a.redis, a.pages, domainStatsLimit)
	if err != nil {
		return err
	}

	if domainStatsJSON {
		encoded, jsonErr := json.MarshalIndent(stats, "", "  ")
		if jsonErr != nil {
			return jsonErr
		}
		fmt.Println(string(encoded))
		return nil
	}

	printDomainCounts(os.Stdout, "Frontier", stats.Frontier)
	printDomainCounts(os.Stdout, "Visited", stats.Visited)
	printDomainCounts(os.Stdout, "Stored", stats.Stored)
	return nil
}

func printDomainCounts(w *os.File, label string, rows []metrics.DomainCount) {
	fmt.Fprintf(w, "%s:\n", label)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-40s %d\n", row.Domain, row.Count)
	}
}
