package metrics

/*
Status Snapshot Responsibilities
- Read the three headline counters (frontier size, visited cardinality,
  stored page count) and render them as JSON plus a small
  self-refreshing HTML dashboard, mirroring the "dump-status" CLI
  surface.
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/nullmapper/distcrawler/pkg/fileutil"
	"github.com/redis/go-redis/v9"
)

const (
	frontierZsetKey = "frontier:zset"
	visitedSetKey   = "visited:set"
)

// PageCounter is the subset of the page store status collection needs.
type PageCounter interface {
	CountPages(ctx context.Context) (int64, failure.ClassifiedError)
}

// CollectStatus reads the current frontier size, visited cardinality,
// and stored page count.
func CollectStatus(ctx context.Context, client *redis.Client, pages PageCounter) (Status, failure.ClassifiedError) {
	frontierSz, err := client.ZCard(ctx, frontierZsetKey).Result()
	if err != nil {
		return Status{}, &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	visited, err := client.SCard(ctx, visitedSetKey).Result()
	if err != nil {
		return Status{}, &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
	}
	pageCount, classified := pages.CountPages(ctx)
	if classified != nil {
		return Status{}, classified
	}
	return Status{
		Frontier:  frontierSz,
		Visited:   visited,
		Pages:     pageCount,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// WriteStatus renders status as status.json and a dashboard.html that
// refreshes itself every 15 seconds.
func WriteStatus(jsonPath, htmlPath string, status Status) failure.ClassifiedError {
	if err := fileutil.EnsureDir(filepath.Dir(jsonPath)); err != nil {
		return err
	}
	if err := fileutil.EnsureDir(filepath.Dir(htmlPath)); err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}
	if err := os.WriteFile(jsonPath, encoded, 0644); err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}

	dashboard := fmt.Sprintf(`<html><head><meta charset="utf-8"><title>Crawler Dashboard</title>
<meta http-equiv="refresh" content="15">
<style>body{font-family:Arial;margin:1.5rem;}table{border-collapse:collapse}td,th{padding:4px 8px;border:1px solid #ddd}</style></head><body>
<h1>Crawler Dashboard Snapshot</h1>
<table><tr><th>Frontier</th><th>Visited</th><th>Pages Stored</th><th>Timestamp (UTC)</th></tr>
<tr><td>%d</td><td>%d</td><td>%d</td><td>%s</td></tr></table>
<p>Raw JSON: <code>%s</code></p>
</body></html>`, status.Frontier, status.Visited, status.Pages, status.Timestamp, jsonPath)

	if err := os.WriteFile(htmlPath, []byte(dashboard), 0644); err != nil {
		return &MetricsError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}
	return nil
}
