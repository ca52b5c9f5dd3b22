package metrics

/*
Domain Breakdown Responsibilities
- Walk the frontier and visited sets with cursor-based SCAN-family
  calls (never KEYS/full SMEMBERS) to build a per-host count, then
  merge in the stored-page aggregation from the page store.
- Hosts are www.-stripped, matching the rest of the domain-facing
  surface (ALLOWED_DOMAINS parsing, link-extraction filtering).
*/

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/redis/go-redis/v9"
)

// DomainAggregator is the subset of the page store domain stats needs.
type DomainAggregator interface {
	AggregateByDomain(ctx context.Context, limit int) ([]pagestore.DomainCount, failure.ClassifiedError)
}

// CollectDomainStats returns the top-limit hosts seen in the frontier,
// the visited set, and the page store.
func CollectDomainStats(ctx context.Context, client *redis.Client, store DomainAggregator, limit int) (DomainStats, failure.ClassifiedError) {
	frontierCounts, err := scanZSetHosts(ctx, client, frontierZsetKey)
	if err != nil {
		return DomainStats{}, err
	}
	visitedCounts, err := scanSetHosts(ctx, client, visitedSetKey)
	if err != nil {
		return DomainStats{}, err
	}
	stored, err := store.AggregateByDomain(ctx, limit)
	if err != nil {
		return DomainStats{}, err
	}

	storedRows := make([]DomainCount, 0, len(stored))
	for _, row := range stored {
		storedRows = append(storedRows, DomainCount{Domain: row.Domain, Count: row.Count})
	}

	return DomainStats{
		Frontier: topN(frontierCounts, limit),
		Visited:  topN(visitedCounts, limit),
		Stored:   storedRows,
	}, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func topN(counts map[string]int64, limit int) []DomainCount {
	rows := make([]DomainCount, 0, len(counts))
	for host, count := range counts {
		rows = append(rows, DomainCount{Domain: host, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Domain < rows[j].Domain
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// scanZSetHosts walks a sorted set with ZScan, counting the host of
// each member.
func scanZSetHosts(ctx context.Context, client *redis.Client, key string) (map[string]int64, failure.ClassifiedError) {
	counts := make(map[string]int64)
	var cursor uint64
	for {
		members, next, err := client.ZScan(ctx, key, cursor, "", 500).Result()
		if err != nil {
			return nil, &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
		}
		// ZScan interleaves member, score, member, score...
		for i := 0; i+1 < len(members); i += 2 {
			if host := hostOf(members[i]); host != "" {
				counts[host]++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return counts, nil
}

// scanSetHosts walks a set with SScan, counting the host of each
// member.
func scanSetHosts(ctx context.Context, client *redis.Client, key string) (map[string]int64, failure.ClassifiedError) {
	counts := make(map[string]int64)
	var cursor uint64
	for {
		members, next, err := client.SScan(ctx, key, cursor, "", 1000).Result()
		if err != nil {
			return nil, &MetricsError{Message: err.Error(), Cause: ErrCauseStoreUnavailable}
		}
		for _, member := range members {
			if host := hostOf(member); host != "" {
				counts[host]++
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return counts, nil
}
