package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wibisana/skimcache/internal/config"
)

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault("summaries-bucket")

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()

	if err != nil {
		t.Errorf("should not have any error, got %v", err)
	}

	if builtCfg.BucketName() != "summaries-bucket" {
		t.Errorf("expected bucket 'summaries-bucket', got '%s'", builtCfg.BucketName())
	}
	if builtCfg.UseMemoryStore() {
		t.Error("expected memory store disabled by default")
	}
	if builtCfg.ListPageSize() != 100 {
		t.Errorf("expected ListPageSize 100, got %d", builtCfg.ListPageSize())
	}
	if builtCfg.ListenAddr() != ":8080" {
		t.Errorf("expected ListenAddr ':8080', got '%s'", builtCfg.ListenAddr())
	}
	if builtCfg.MaxRecentEntries() != 100 {
		t.Errorf("expected MaxRecentEntries 100, got %d", builtCfg.MaxRecentEntries())
	}
	if builtCfg.MaxInflightSummaries() != 2 {
		t.Errorf("expected MaxInflightSummaries 2, got %d", builtCfg.MaxInflightSummaries())
	}
	if builtCfg.Model() != "gemini-3-pro" {
		t.Errorf("expected default model, got '%s'", builtCfg.Model())
	}
	if builtCfg.SummarizeTimeout() != 120*time.Second {
		t.Errorf("expected SummarizeTimeout 120s, got %v", builtCfg.SummarizeTimeout())
	}
	if builtCfg.FetchTimeout() != 10*time.Second {
		t.Errorf("expected FetchTimeout 10s, got %v", builtCfg.FetchTimeout())
	}
	if builtCfg.UserAgent() != "skimcache/1.0" {
		t.Errorf("expected UserAgent 'skimcache/1.0', got '%s'", builtCfg.UserAgent())
	}
	if builtCfg.MaxAttempt() != 3 {
		t.Errorf("expected MaxAttempt 3, got %d", builtCfg.MaxAttempt())
	}
	if builtCfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %v", builtCfg.BackoffMultiplier())
	}
}

func TestBuildRejectsEmptyBucket(t *testing.T) {
	_, err := config.WithDefault("").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildAllowsEmptyBucketWithMemoryStore(t *testing.T) {
	cfg, err := config.WithDefault("").WithMemoryStore(true).Build()
	if err != nil {
		t.Fatalf("expected memory-store config to build, got %v", err)
	}
	if !cfg.UseMemoryStore() {
		t.Error("expected memory store enabled")
	}
}

func TestBuildRejectsNonPositiveBounds(t *testing.T) {
	if _, err := config.WithDefault("b").WithListPageSize(0).Build(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for page size, got %v", err)
	}
	if _, err := config.WithDefault("b").WithMaxRecentEntries(-1).Build(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for recent entries, got %v", err)
	}
	if _, err := config.WithDefault("b").WithMaxInflightSummaries(0).Build(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for inflight bound, got %v", err)
	}
}

func TestBuilderOverrides(t *testing.T) {
	cfg, err := config.WithDefault("bucket").
		WithListenAddr("127.0.0.1:9999").
		WithMaxRecentEntries(25).
		WithModel("gemini-3-flash").
		WithFetchTimeout(3 * time.Second).
		WithUserAgent("custom-agent/2.0").
		WithMaxAttempt(7).
		Build()
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	if cfg.ListenAddr() != "127.0.0.1:9999" {
		t.Errorf("expected overridden listen addr, got '%s'", cfg.ListenAddr())
	}
	if cfg.MaxRecentEntries() != 25 {
		t.Errorf("expected overridden recent bound, got %d", cfg.MaxRecentEntries())
	}
	if cfg.Model() != "gemini-3-flash" {
		t.Errorf("expected overridden model, got '%s'", cfg.Model())
	}
	if cfg.FetchTimeout() != 3*time.Second {
		t.Errorf("expected overridden fetch timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.UserAgent() != "custom-agent/2.0" {
		t.Errorf("expected overridden user agent, got '%s'", cfg.UserAgent())
	}
	if cfg.MaxAttempt() != 7 {
		t.Errorf("expected overridden max attempt, got %d", cfg.MaxAttempt())
	}
}

func TestWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"bucketName": "file-bucket",
		"listenAddr": ":9000",
		"maxRecentEntries": 10,
		"model": "gemini-3-flash"
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("expected config file to load, got %v", err)
	}

	if cfg.BucketName() != "file-bucket" {
		t.Errorf("expected bucket from file, got '%s'", cfg.BucketName())
	}
	if cfg.ListenAddr() != ":9000" {
		t.Errorf("expected listen addr from file, got '%s'", cfg.ListenAddr())
	}
	if cfg.MaxRecentEntries() != 10 {
		t.Errorf("expected recent bound from file, got %d", cfg.MaxRecentEntries())
	}
	if cfg.Model() != "gemini-3-flash" {
		t.Errorf("expected model from file, got '%s'", cfg.Model())
	}
	// Unset fields keep their defaults
	if cfg.ListPageSize() != 100 {
		t.Errorf("expected default page size, got %d", cfg.ListPageSize())
	}
}

func TestWithConfigFileMissing(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got %v", err)
	}
}

func TestWithConfigFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got %v", err)
	}
}
