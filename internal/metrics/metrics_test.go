package metrics_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nullmapper/distcrawler/internal/metrics"
	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

type fakePageCounter struct{ count int64 }

func (f fakePageCounter) CountPages(ctx context.Context) (int64, failure.ClassifiedError) {
	return f.count, nil
}

type fakeDomainAggregator struct{ rows []pagestore.DomainCount }

func (f fakeDomainAggregator) AggregateByDomain(ctx context.Context, limit int) ([]pagestore.DomainCount, failure.ClassifiedError) {
	return f.rows, nil
}

func TestRobotsBlockedCounter(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	n, err := metrics.GetRobotsBlocked(ctx, client)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	require.NoError(t, metrics.IncrRobotsBlocked(ctx, client))
	require.NoError(t, metrics.IncrRobotsBlocked(ctx, client))

	n, err = metrics.GetRobotsBlocked(ctx, client)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.NoError(t, metrics.ResetRobotsBlocked(ctx, client))
	n, err = metrics.GetRobotsBlocked(ctx, client)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestCollectAndWriteStatus(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.ZAdd(ctx, "frontier:zset", redis.Z{Score: 1, Member: "https://a.com"}).Err())
	require.NoError(t, client.SAdd(ctx, "visited:set", "https://b.com").Err())

	status, err := metrics.CollectStatus(ctx, client, fakePageCounter{count: 5})
	require.NoError(t, err)
	require.Equal(t, int64(1), status.Frontier)
	require.Equal(t, int64(1), status.Visited)
	require.Equal(t, int64(5), status.Pages)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "status.json")
	htmlPath := filepath.Join(dir, "dashboard.html")
	require.NoError(t, metrics.WriteStatus(jsonPath, htmlPath, status))

	raw, readErr := os.ReadFile(jsonPath)
	require.NoError(t, readErr)
	var decoded metrics.Status
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, status.Pages, decoded.Pages)

	htmlRaw, readErr := os.ReadFile(htmlPath)
	require.NoError(t, readErr)
	require.Contains(t, string(htmlRaw), "Crawler Dashboard")
}

func TestCollectDomainStats(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.ZAdd(ctx, "frontier:zset",
		redis.Z{Score: 1, Member: "https://www.a.com/1"},
		redis.Z{Score: 1, Member: "https://a.com/2"},
		redis.Z{Score: 1, Member: "https://b.com/1"},
	).Err())
	require.NoError(t, client.SAdd(ctx, "visited:set", "https://a.com/seen").Err())

	store := fakeDomainAggregator{rows: []pagestore.DomainCount{{Domain: "a.com", Count: 3}}}

	stats, err := metrics.CollectDomainStats(ctx, client, store, 10)
	require.NoError(t, err)
	require.Len(t, stats.Frontier, 2)
	require.Equal(t, "a.com", stats.Frontier[0].Domain)
	require.Equal(t, int64(2), stats.Frontier[0].Count)
	require.Len(t, stats.Visited, 1)
	require.Equal(t, "a.com", stats.Stored[0].Domain)
}
