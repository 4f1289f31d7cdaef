package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	//===============
	// Storage
	//===============
	// Bucket holding one compressed artifact per summarized URL.
	// Mandatory unless the in-memory store is selected.
	bucketName string
	// Run against the in-memory store instead of a bucket. Meant for
	// local development and tests.
	useMemoryStore bool
	// Number of keys requested per listing page during a recency scan.
	listPageSize int

	//===============
	// Serving
	//===============
	// Address the HTTP server binds to
	listenAddr string
	// Upper bound on entries returned by the recent listing
	maxRecentEntries int
	// Maximum summarization requests allowed in flight at once
	maxInflightSummaries int

	//===============
	// Summarization
	//===============
	// Model identifier passed to the generation backend
	model string
	// Maximum time for a single summarization call
	summarizeTimeout time.Duration

	//===============
	// Fetching
	//===============
	// Maximum time of a single page fetch request
	fetchTimeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Retry
	//===============
	// Randomized variation added on top of backoff delays
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration
}

type configDTO struct {
	BucketName             string        `json:"bucketName"`
	UseMemoryStore         bool          `json:"useMemoryStore,omitempty"`
	ListPageSize           int           `json:"listPageSize,omitempty"`
	ListenAddr             string        `json:"listenAddr,omitempty"`
	MaxRecentEntries       int           `json:"maxRecentEntries,omitempty"`
	MaxInflightSummaries   int           `json:"maxInflightSummaries,omitempty"`
	Model                  string        `json:"model,omitempty"`
	SummarizeTimeout       time.Duration `json:"summarizeTimeout,omitempty"`
	FetchTimeout           time.Duration `json:"fetchTimeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := *WithDefault(dto.BucketName)

	// UseMemoryStore is a boolean, the DTO value is taken as-is
	cfg.useMemoryStore = dto.UseMemoryStore

	// For other fields, only override if a non-zero value is provided
	if dto.ListPageSize != 0 {
		cfg.listPageSize = dto.ListPageSize
	}
	if dto.ListenAddr != "" {
		cfg.listenAddr = dto.ListenAddr
	}
	if dto.MaxRecentEntries != 0 {
		cfg.maxRecentEntries = dto.MaxRecentEntries
	}
	if dto.MaxInflightSummaries != 0 {
		cfg.maxInflightSummaries = dto.MaxInflightSummaries
	}
	if dto.Model != "" {
		cfg.model = dto.Model
	}
	if dto.SummarizeTimeout != 0 {
		cfg.summarizeTimeout = dto.SummarizeTimeout
	}
	if dto.FetchTimeout != 0 {
		cfg.fetchTimeout = dto.FetchTimeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided bucket name and
// default values for all other fields. The bucket name is mandatory
// unless the in-memory store is selected before Build.
func WithDefault(bucketName string) *Config {
	defaultConfig := Config{
		bucketName:             bucketName,
		useMemoryStore:         false,
		listPageSize:           100,
		listenAddr:             ":8080",
		maxRecentEntries:       100,
		maxInflightSummaries:   2,
		model:                  "gemini-3-pro",
		summarizeTimeout:       120 * time.Second,
		fetchTimeout:           10 * time.Second,
		userAgent:              "skimcache/1.0",
		jitter:                 500 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
	}
	return &defaultConfig
}

func (c *Config) WithBucketName(bucketName string) *Config {
	c.bucketName = bucketName
	return c
}

func (c *Config) WithMemoryStore(useMemoryStore bool) *Config {
	c.useMemoryStore = useMemoryStore
	return c
}

func (c *Config) WithListPageSize(pageSize int) *Config {
	c.listPageSize = pageSize
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithMaxRecentEntries(maxEntries int) *Config {
	c.maxRecentEntries = maxEntries
	return c
}

func (c *Config) WithMaxInflightSummaries(maxInflight int) *Config {
	c.maxInflightSummaries = maxInflight
	return c
}

func (c *Config) WithModel(model string) *Config {
	c.model = model
	return c
}

func (c *Config) WithSummarizeTimeout(timeout time.Duration) *Config {
	c.summarizeTimeout = timeout
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) Build() (Config, error) {
	if c.bucketName == "" && !c.useMemoryStore {
		return Config{}, fmt.Errorf("%w: bucketName cannot be empty", ErrInvalidConfig)
	}
	if c.listPageSize < 1 {
		return Config{}, fmt.Errorf("%w: listPageSize must be positive", ErrInvalidConfig)
	}
	if c.maxRecentEntries < 1 {
		return Config{}, fmt.Errorf("%w: maxRecentEntries must be positive", ErrInvalidConfig)
	}
	if c.maxInflightSummaries < 1 {
		return Config{}, fmt.Errorf("%w: maxInflightSummaries must be positive", ErrInvalidConfig)
	}

	return *c, nil
}

func (c Config) BucketName() string {
	return c.bucketName
}

func (c Config) UseMemoryStore() bool {
	return c.useMemoryStore
}

func (c Config) ListPageSize() int {
	return c.listPageSize
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) MaxRecentEntries() int {
	return c.maxRecentEntries
}

func (c Config) MaxInflightSummaries() int {
	return c.maxInflightSummaries
}

func (c Config) Model() string {
	return c.model
}

func (c Config) SummarizeTimeout() time.Duration {
	return c.summarizeTimeout
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}
