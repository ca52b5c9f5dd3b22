package worker

/*
Worker Responsibilities
- Drive one claim-fetch-store cycle at a time: claim a URL from the
  frontier, check it against the visited set, robots policy, and the
  per-domain rate limiter, fetch it, store the result, and requeue its
  unseen outbound links.
- A worker never retries the pipeline itself; the fetch step's own
  bounded transport retry is the only retry in the loop. Every other
  failure either drops the URL (outage) or is a terminal, correctly
  recorded outcome (non-200, non-HTML, oversized, robots-denied).

Concurrency: N Worker instances share the same Frontier/Visited/
RateLimiter/Robots/Sink handles (all backed by Redis/Mongo) and each
hold their own *http.Client, matching the "per-worker HTTP session"
resource rule.
*/

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nullmapper/distcrawler/internal/fetcher"
	"github.com/nullmapper/distcrawler/internal/linkextract"
	"github.com/nullmapper/distcrawler/internal/pagestore"
	"github.com/sirupsen/logrus"
)

// Params configures a Worker's policy knobs, kept separate from its
// collaborator handles so tests can share one Params across many
// Worker instances wired to different fakes.
type Params struct {
	UserAgent            string
	RequestTimeout       time.Duration
	MaxContentSizeBytes  int64
	DomainCooldown       time.Duration
	AllowedDomains       map[string]struct{}
	IdleSleep            time.Duration
}

// DefaultIdleSleep is how long a worker sleeps after finding the
// frontier empty.
const DefaultIdleSleep = 100 * time.Millisecond

type Worker struct {
	frontier    FrontierStore
	visited     VisitedStore
	rateLimiter RateLimiterStore
	robots      RobotsChecker
	robotsCtr   RobotsBlockedCounter
	store       pagestore.Sink
	httpClient  *http.Client
	fetch       Fetch
	extract     Extract
	params      Params
	log         *logrus.Entry
}

func New(
	frontier FrontierStore,
	visited VisitedStore,
	rateLimiter RateLimiterStore,
	robots RobotsChecker,
	robotsCtr RobotsBlockedCounter,
	store pagestore.Sink,
	httpClient *http.Client,
	params Params,
	log *logrus.Entry,
) *Worker {
	if params.IdleSleep <= 0 {
		params.IdleSleep = DefaultIdleSleep
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Worker{
		frontier:    frontier,
		visited:     visited,
		rateLimiter: rateLimiter,
		robots:      robots,
		robotsCtr:   robotsCtr,
		store:       store,
		httpClient:  httpClient,
		fetch:       fetcher.Fetch,
		extract:     linkextract.Extract,
		params:      params,
		log:         log,
	}
}

// Run loops ProcessOne until stop is closed, sleeping briefly whenever
// the frontier has nothing ready.
func (w *Worker) Run(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		processed := w.ProcessOne(ctx)
		if !processed {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-time.After(w.params.IdleSleep):
			}
		}
	}
}

// ProcessOne runs one claim-fetch-store cycle. It returns false only
// when no URL was claimed — the frontier had nothing ready, or the
// claim itself failed; every path after a successful claim (including
// every dropped-URL outage) returns true so Run never idle-sleeps
// between genuinely claimed URLs.
func (w *Worker) ProcessOne(ctx context.Context) bool {
	urls, err := w.frontier.PopReady(ctx, 1)
	if err != nil {
		w.log.WithError(err).Warn("frontier pop_ready failed")
		return false
	}
	if len(urls) == 0 {
		return false
	}
	target := urls[0]
	log := w.log.WithField("url", target)

	visited, err := w.visited.IsVisited(ctx, target)
	if err != nil {
		log.WithError(err).Warn("visited lookup failed, dropping url")
		return true
	}
	if visited {
		return true
	}

	allowed, err := w.robots.IsAllowed(ctx, target)
	if err != nil {
		log.WithError(err).Warn("robots lookup failed, dropping url")
		return true
	}
	if !allowed {
		if err := w.robotsCtr.IncrRobotsBlocked(ctx); err != nil {
			log.WithError(err).Warn("robots_blocked counter write failed")
		}
		if err := w.visited.MarkVisited(ctx, target, time.Now()); err != nil {
			log.WithError(err).Warn("mark_visited failed after robots deny")
		}
		return true
	}

	domain := hostnameOf(target)
	allowedAt, reserved, err := w.rateLimiter.CheckAndReserve(ctx, domain, w.params.DomainCooldown)
	if err != nil {
		log.WithError(err).Warn("rate limiter check failed, dropping url")
		return true
	}
	if !reserved {
		if err := w.frontier.Push(ctx, target, allowedAt); err != nil {
			log.WithError(err).Warn("reschedule push failed")
		}
		return true
	}

	outcome, fetchErr := w.fetch(ctx, w.httpClient, target, w.params.UserAgent, w.params.RequestTimeout, w.params.MaxContentSizeBytes)
	now := time.Now()

	var page pagestore.Page
	var links []string

	if fetchErr != nil {
		// Transport failure exhausted its retries: give up on this URL,
		// recording status=0 per the error taxonomy.
		page = pagestore.Page{
			URL:       target,
			Domain:    domain,
			Timestamp: float64(now.Unix()),
			Status:    0,
		}
	} else {
		var title string
		if outcome.Body != "" {
			var extractErr error
			title, links, extractErr = w.extract(target, []byte(outcome.Body), w.params.AllowedDomains)
			if extractErr != nil {
				log.WithError(extractErr).Warn("link extraction failed")
				links = nil
			}
		}
		page = pagestore.Page{
			URL:         target,
			Title:       title,
			HTML:        outcome.Body,
			Links:       links,
			Domain:      domain,
			Timestamp:   float64(now.Unix()),
			Status:      outcome.StatusCode,
			ContentType: outcome.ContentType,
		}
	}

	if err := w.store.SavePage(ctx, page); err != nil {
		log.WithError(err).Warn("save_page failed, dropping url")
		return true
	}

	if err := w.visited.MarkVisited(ctx, target, now); err != nil {
		log.WithError(err).Warn("mark_visited failed after save")
		return true
	}

	if len(links) == 0 {
		return true
	}

	seenFlags, err := w.visited.HasMany(ctx, links)
	if err != nil {
		log.WithError(err).Warn("has_many failed, skipping link requeue")
		return true
	}
	unseen := make([]string, 0, len(links))
	for i, link := range links {
		if i < len(seenFlags) && !seenFlags[i] {
			unseen = append(unseen, link)
		}
	}
	if err := w.frontier.PushMany(ctx, unseen, now); err != nil {
		log.WithError(err).Warn("push_many failed for discovered links")
	}

	return true
}

func hostnameOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
