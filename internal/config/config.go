package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of a crawl, built either from
// defaults or from the process environment. It follows a builder-chain
// shape: WithDefault() seeds every field, With* methods override
// individual ones, Build() validates and freezes the result.
type Config struct {
	redisURL            string
	mongoURL            string
	mongoDB             string
	concurrency         int
	domainCooldown      time.Duration
	requestTimeout      time.Duration
	maxContentSizeBytes int64
	userAgent           string
	seedURLs            []string
	allowedDomains      map[string]struct{}
	maxPages            int // 0 means unbounded
}

// WithDefault returns a Config populated with the defaults from the
// external-interfaces table: REDIS_URL, MONGO_URL, MONGO_DB, CONCURRENCY,
// DOMAIN_COOLDOWN_SECONDS, REQUEST_TIMEOUT_SECONDS, MAX_CONTENT_SIZE_BYTES,
// USER_AGENT.
func WithDefault() *Config {
	return &Config{
		redisURL:            "redis://localhost:6379/0",
		mongoURL:            "mongodb://localhost:27017",
		mongoDB:             "crawler",
		concurrency:         200,
		domainCooldown:      time.Second,
		requestTimeout:      15 * time.Second,
		maxContentSizeBytes: 3 * 1024 * 1024,
		userAgent:           "DistributedCrawler/1.0",
		seedURLs:            nil,
		allowedDomains:      map[string]struct{}{},
		maxPages:            0,
	}
}

// Load builds a Config from an optional .env file followed by the
// process environment, falling back to WithDefault for anything unset.
// A missing .env file is not an error; godotenv.Load only wires values
// in ahead of os.Getenv reads.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := WithDefault()

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.WithRedisURL(v)
	}
	if v := os.Getenv("MONGO_URL"); v != "" {
		cfg.WithMongoURL(v)
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		cfg.WithMongoDB(v)
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: CONCURRENCY: %s", ErrInvalidConfig, err)
		}
		cfg.WithConcurrency(n)
	}
	if v := os.Getenv("DOMAIN_COOLDOWN_SECONDS"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: DOMAIN_COOLDOWN_SECONDS: %s", ErrInvalidConfig, err)
		}
		cfg.WithDomainCooldown(time.Duration(secs * float64(time.Second)))
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: REQUEST_TIMEOUT_SECONDS: %s", ErrInvalidConfig, err)
		}
		cfg.WithRequestTimeout(time.Duration(secs * float64(time.Second)))
	}
	if v := os.Getenv("MAX_CONTENT_SIZE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MAX_CONTENT_SIZE_BYTES: %s", ErrInvalidConfig, err)
		}
		cfg.WithMaxContentSizeBytes(n)
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.WithUserAgent(v)
	}
	if v := os.Getenv("SEED_URLS"); v != "" {
		cfg.WithSeedURLs(splitCSV(v))
	}
	if v := os.Getenv("ALLOWED_DOMAINS"); v != "" {
		cfg.WithAllowedDomains(normalizeDomains(splitCSV(v)))
	}
	if v := os.Getenv("MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MAX_PAGES: %s", ErrInvalidConfig, err)
		}
		cfg.WithMaxPages(n)
	}

	return cfg.Build()
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeDomains lowercases each host and strips a leading "www.",
// matching the comparison the link extractor applies to ALLOWED_DOMAINS.
func normalizeDomains(hosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "www.")
		if h != "" {
			out[h] = struct{}{}
		}
	}
	return out
}

func (c *Config) WithRedisURL(url string) *Config {
	c.redisURL = url
	return c
}

func (c *Config) WithMongoURL(url string) *Config {
	c.mongoURL = url
	return c
}

func (c *Config) WithMongoDB(db string) *Config {
	c.mongoDB = db
	return c
}

func (c *Config) WithConcurrency(n int) *Config {
	c.concurrency = n
	return c
}

func (c *Config) WithDomainCooldown(d time.Duration) *Config {
	c.domainCooldown = d
	return c
}

func (c *Config) WithRequestTimeout(d time.Duration) *Config {
	c.requestTimeout = d
	return c
}

func (c *Config) WithMaxContentSizeBytes(n int64) *Config {
	c.maxContentSizeBytes = n
	return c
}

func (c *Config) WithUserAgent(ua string) *Config {
	c.userAgent = ua
	return c
}

func (c *Config) WithSeedURLs(urls []string) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithAllowedDomains(domains map[string]struct{}) *Config {
	c.allowedDomains = domains
	return c
}

func (c *Config) WithMaxPages(n int) *Config {
	c.maxPages = n
	return c
}

// Build validates the accumulated fields and returns the frozen Config.
func (c *Config) Build() (Config, error) {
	if c.redisURL == "" {
		return Config{}, ErrMissingRedisURL
	}
	if c.mongoURL == "" {
		return Config{}, ErrMissingMongoURL
	}
	if c.concurrency <= 0 {
		return Config{}, fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	if c.allowedDomains == nil {
		c.allowedDomains = map[string]struct{}{}
	}
	return *c, nil
}

func (c Config) RedisURL() string { return c.redisURL }

func (c Config) MongoURL() string { return c.mongoURL }

func (c Config) MongoDB() string { return c.mongoDB }

func (c Config) Concurrency() int { return c.concurrency }

func (c Config) DomainCooldown() time.Duration { return c.domainCooldown }

func (c Config) RequestTimeout() time.Duration { return c.requestTimeout }

func (c Config) MaxContentSizeBytes() int64 { return c.maxContentSizeBytes }

func (c Config) UserAgent() string { return c.userAgent }

func (c Config) SeedURLs() []string {
	urls := make([]string, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) AllowedDomains() map[string]struct{} {
	domains := make(map[string]struct{}, len(c.allowedDomains))
	for k, v := range c.allowedDomains {
		domains[k] = v
	}
	return domains
}

// MaxPages returns the configured cap, or (0, false) when unbounded.
func (c Config) MaxPages() (int, bool) {
	return c.maxPages, c.maxPages > 0
}
