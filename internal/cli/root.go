package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wibisana/skimcache/internal/blob"
	"github.com/wibisana/skimcache/internal/build"
	"github.com/wibisana/skimcache/internal/cache"
	"github.com/wibisana/skimcache/internal/config"
	"github.com/wibisana/skimcache/internal/fetcher"
	"github.com/wibisana/skimcache/internal/metadata"
	"github.com/wibisana/skimcache/internal/readable"
	"github.com/wibisana/skimcache/internal/recency"
	"github.com/wibisana/skimcache/internal/summarize"
	"github.com/wibisana/skimcache/internal/web"
	"github.com/wibisana/skimcache/pkg/limiter"
	"github.com/wibisana/skimcache/pkg/retry"
	"github.com/wibisana/skimcache/pkg/timeutil"
)

var (
	cfgFile          string
	bucketName       string
	memoryStore      bool
	listenAddr       string
	listPageSize     int
	maxRecent        int
	maxInflight      int
	model            string
	summarizeTimeout time.Duration
	fetchTimeout     time.Duration
	userAgent        string
	jitter           time.Duration
	randomSeed       int64
	maxAttempt       int
	backoffInitial   time.Duration
	backoffMult      float64
	backoffMax       time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "skimcache",
	Short:   "A caching summary service for web articles.",
	Version: build.FullVersion(),
	Long: `skimcache serves cached article summaries keyed by URL.

Submitted pages are summarized once, stored compressed in an object
store under a reversible URL-derived key, and served as HTML from then
on. A bounded recency scan over the bucket backs the listing of the
most recently summarized articles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; real environments set variables directly.
		_ = godotenv.Load()

		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&bucketName, "bucket", "", "object store bucket holding the cached summaries")
	rootCmd.PersistentFlags().BoolVar(&memoryStore, "memory-store", false, "serve from an in-memory store instead of a bucket")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", "", "address the HTTP server binds to")
	rootCmd.PersistentFlags().IntVar(&listPageSize, "page-size", 0, "keys per listing page during recency scans")
	rootCmd.PersistentFlags().IntVar(&maxRecent, "max-recent", 0, "upper bound on entries in the recent listing")
	rootCmd.PersistentFlags().IntVar(&maxInflight, "max-inflight", 0, "maximum concurrent summarization requests")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model identifier for the summarization backend")
	rootCmd.PersistentFlags().DurationVar(&summarizeTimeout, "summarize-timeout", 0, "timeout for a single summarization call")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", 0, "timeout for a single page fetch")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for outbound page fetches")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to retry backoff")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "maximum attempts for retried operations")
	rootCmd.PersistentFlags().DurationVar(&backoffInitial, "backoff-initial", 0, "initial delay for retry backoff")
	rootCmd.PersistentFlags().Float64Var(&backoffMult, "backoff-multiplier", 0, "growth factor for retry backoff")
	rootCmd.PersistentFlags().DurationVar(&backoffMax, "backoff-max", 0, "upper bound on retry backoff delay")
}

// InitConfig reads in config file and flags, exiting on error.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads in config file and flags, returning any
// errors. This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Build config from CLI flags using the With... functions with method chaining
	configBuilder := config.WithDefault(bucketName)

	if memoryStore {
		configBuilder = configBuilder.WithMemoryStore(memoryStore)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	if listPageSize > 0 {
		configBuilder = configBuilder.WithListPageSize(listPageSize)
	}

	if maxRecent > 0 {
		configBuilder = configBuilder.WithMaxRecentEntries(maxRecent)
	}

	if maxInflight > 0 {
		configBuilder = configBuilder.WithMaxInflightSummaries(maxInflight)
	}

	if model != "" {
		configBuilder = configBuilder.WithModel(model)
	}

	if summarizeTimeout > 0 {
		configBuilder = configBuilder.WithSummarizeTimeout(summarizeTimeout)
	}

	if fetchTimeout > 0 {
		configBuilder = configBuilder.WithFetchTimeout(fetchTimeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if backoffInitial > 0 {
		configBuilder = configBuilder.WithBackoffInitialDuration(backoffInitial)
	}

	if backoffMult > 0 {
		configBuilder = configBuilder.WithBackoffMultiplier(backoffMult)
	}

	if backoffMax > 0 {
		configBuilder = configBuilder.WithBackoffMaxDuration(backoffMax)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	sink := metadata.NewLogRecorder(logger)

	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	store := cache.NewStore(objects, sink)
	index := recency.NewIndex(objects, sink, cfg.ListPageSize())

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
	summarizer, err := summarize.NewGeminiSummarizer(ctx, apiKey, cfg.Model(), retryParam, sink)
	if err != nil {
		return err
	}

	htmlFetcher := fetcher.NewHtmlFetcher(sink, cfg.FetchTimeout())
	extractor := readable.NewDomExtractor(sink)
	inflight := limiter.NewConcurrentInflightLimiter(cfg.MaxInflightSummaries())

	server := web.NewServer(cfg, &store, index, summarizer, &htmlFetcher, &extractor, inflight, sink)

	// The write timeout must cover the slowest route, which may fetch
	// the page and then wait on the model.
	writeTimeout := timeutil.MaxDuration([]time.Duration{
		cfg.SummarizeTimeout() + cfg.FetchTimeout(),
		30 * time.Second,
	})
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("skimcache %s listening on %s", build.Stamp(), cfg.ListenAddr())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildObjectStore(ctx context.Context, cfg config.Config) (blob.ObjectStore, error) {
	if cfg.UseMemoryStore() {
		return blob.NewMemoryStore(), nil
	}
	return blob.NewGCSStore(ctx, cfg.BucketName())
}

func ResetFlags() {
	cfgFile = ""
	bucketName = ""
	memoryStore = false
	listenAddr = ""
	listPageSize = 0
	maxRecent = 0
	maxInflight = 0
	model = ""
	summarizeTimeout = 0
	fetchTimeout = 0
	userAgent = ""
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	backoffInitial = 0
	backoffMult = 0
	backoffMax = 0
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetBucketNameForTest(bucket string) {
	bucketName = bucket
}

func SetMemoryStoreForTest(useMemory bool) {
	memoryStore = useMemory
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}

func SetListPageSizeForTest(pageSize int) {
	listPageSize = pageSize
}

func SetMaxRecentForTest(maxEntries int) {
	maxRecent = maxEntries
}

func SetMaxInflightForTest(maxInflightSummaries int) {
	maxInflight = maxInflightSummaries
}

func SetModelForTest(m string) {
	model = m
}

func SetSummarizeTimeoutForTest(timeout time.Duration) {
	summarizeTimeout = timeout
}

func SetFetchTimeoutForTest(timeout time.Duration) {
	fetchTimeout = timeout
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetBackoffInitialForTest(duration time.Duration) {
	backoffInitial = duration
}

func SetBackoffMultiplierForTest(multiplier float64) {
	backoffMult = multiplier
}

func SetBackoffMaxForTest(duration time.Duration) {
	backoffMax = duration
}
