package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/nullmapper/distcrawler/internal/config"
)

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault()

	built, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if built.RedisURL() != "redis://localhost:6379/0" {
		t.Errorf("expected default RedisURL, got %q", built.RedisURL())
	}
	if built.MongoURL() != "mongodb://localhost:27017" {
		t.Errorf("expected default MongoURL, got %q", built.MongoURL())
	}
	if built.MongoDB() != "crawler" {
		t.Errorf("expected default MongoDB 'crawler', got %q", built.MongoDB())
	}
	if built.Concurrency() != 200 {
		t.Errorf("expected Concurrency 200, got %d", built.Concurrency())
	}
	if built.DomainCooldown() != time.Second {
		t.Errorf("expected DomainCooldown 1s, got %v", built.DomainCooldown())
	}
	if built.RequestTimeout() != 15*time.Second {
		t.Errorf("expected RequestTimeout 15s, got %v", built.RequestTimeout())
	}
	if built.MaxContentSizeBytes() != 3*1024*1024 {
		t.Errorf("expected MaxContentSizeBytes 3MiB, got %d", built.MaxContentSizeBytes())
	}
	if built.UserAgent() != "DistributedCrawler/1.0" {
		t.Errorf("expected default UserAgent, got %q", built.UserAgent())
	}
	if len(built.SeedURLs()) != 0 {
		t.Errorf("expected no seed URLs by default, got %v", built.SeedURLs())
	}
	if len(built.AllowedDomains()) != 0 {
		t.Errorf("expected no allowed-domains restriction by default, got %v", built.AllowedDomains())
	}
	if n, ok := built.MaxPages(); ok || n != 0 {
		t.Errorf("expected unbounded MaxPages by default, got (%d, %v)", n, ok)
	}
}

func TestBuildRejectsEmptyRedisURL(t *testing.T) {
	_, err := config.WithDefault().WithRedisURL("").Build()
	if err == nil {
		t.Fatal("expected error for empty RedisURL")
	}
}

func TestBuildRejectsNonPositiveConcurrency(t *testing.T) {
	_, err := config.WithDefault().WithConcurrency(0).Build()
	if err == nil {
		t.Fatal("expected error for zero concurrency")
	}
}

func TestWithMaxPagesBounded(t *testing.T) {
	built, err := config.WithDefault().WithMaxPages(50).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := built.MaxPages()
	if !ok || n != 50 {
		t.Errorf("expected (50, true), got (%d, %v)", n, ok)
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("MONGO_URL", "mongodb://db:27017")
	t.Setenv("MONGO_DB", "testdb")
	t.Setenv("CONCURRENCY", "50")
	t.Setenv("DOMAIN_COOLDOWN_SECONDS", "2.5")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_CONTENT_SIZE_BYTES", "1024")
	t.Setenv("USER_AGENT", "test-agent/9.9")
	t.Setenv("SEED_URLS", "https://a.example.com, https://b.example.com")
	t.Setenv("ALLOWED_DOMAINS", "WWW.Example.COM, other.com")
	t.Setenv("MAX_PAGES", "10")
	defer clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RedisURL() != "redis://cache:6379/1" {
		t.Errorf("expected overridden RedisURL, got %q", cfg.RedisURL())
	}
	if cfg.Concurrency() != 50 {
		t.Errorf("expected Concurrency 50, got %d", cfg.Concurrency())
	}
	if cfg.DomainCooldown() != 2500*time.Millisecond {
		t.Errorf("expected DomainCooldown 2.5s, got %v", cfg.DomainCooldown())
	}
	if len(cfg.SeedURLs()) != 2 {
		t.Errorf("expected 2 seed URLs, got %v", cfg.SeedURLs())
	}
	domains := cfg.AllowedDomains()
	if _, ok := domains["example.com"]; !ok {
		t.Errorf("expected 'example.com' (www-stripped, lowercased) in AllowedDomains, got %v", domains)
	}
	if _, ok := domains["other.com"]; !ok {
		t.Errorf("expected 'other.com' in AllowedDomains, got %v", domains)
	}
	n, ok := cfg.MaxPages()
	if !ok || n != 10 {
		t.Errorf("expected MaxPages (10, true), got (%d, %v)", n, ok)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"REDIS_URL", "MONGO_URL", "MONGO_DB", "CONCURRENCY",
		"DOMAIN_COOLDOWN_SECONDS", "REQUEST_TIMEOUT_SECONDS",
		"MAX_CONTENT_SIZE_BYTES", "USER_AGENT", "SEED_URLS",
		"ALLOWED_DOMAINS", "MAX_PAGES",
	} {
		os.Unsetenv(k)
	}
}
