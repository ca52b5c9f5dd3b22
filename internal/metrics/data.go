package metrics

// Status is a point-in-time snapshot of the crawl's shared counters,
// written by the dump-status CLI surface.
type Status struct {
	Frontier  int64  `json:"frontier"`
	Visited   int64  `json:"visited"`
	Pages     int64  `json:"pages"`
	Timestamp string `json:"ts"`
}

// RunSummary is what the supervisor returns when a run stops; the run
// command writes it to disk.
type RunSummary struct {
	PagesCrawled    int64           `json:"pages_crawled"`
	DurationSeconds float64         `json:"duration_seconds"`
	PagesPerSecond  float64         `json:"pages_per_second"`
	StartTs         float64         `json:"start_ts"`
	EndTs           float64         `json:"end_ts"`
	StatusCounts    map[string]int64 `json:"status_counts"`
	RobotsBlocked   int64           `json:"robots_blocked"`
}

// DomainCount is one row of a top-N domain breakdown.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// DomainStats is the top-N host breakdown across the three layers of
// crawl state, returned by the domain-stats CLI surface.
type DomainStats struct {
	Frontier []DomainCount `json:"frontier"`
	Visited  []DomainCount `json:"visited"`
	Stored   []DomainCount `json:"stored"`
}
