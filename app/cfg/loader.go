package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DatabasePath      string `long:"database-path" env:"DATABASE_PATH" default:"./trend_comb.db" description:"SQLite database file"`
	WatchesDir        string `long:"watches-dir" env:"WATCHES_DIR" default:"./watches" description:"Directory containing watch configuration files"`
	LexiconFile       string `long:"lexicon-file" env:"LEXICON_FILE" description:"YAML file overriding the sentiment lexicon"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for watch ingestion"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`

	// Sources
	UseMockData     bool   `long:"use-mock-data" env:"USE_MOCK_DATA" description:"Serve generated or replayed posts instead of calling platforms"`
	FixturesFile    string `long:"fixtures-file" env:"FIXTURES_FILE" description:"JSON file of recorded posts replayed in mock mode"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"0" description:"Per-source fetch deadline in seconds (0 waits for every source)"`
	TwitterAPIKey   string `long:"twitter-api-key" env:"TWITTERAPI_IO_KEY" description:"twitterapi.io API key"`
	TwitterBaseURL  string `long:"twitter-base-url" env:"TWITTER_BASE_URL" default:"https://api.twitterapi.io" description:"twitterapi.io base URL"`
	RedditMode      string `long:"reddit-mode" env:"REDDIT_MODE" default:"json" choice:"json" choice:"rss" description:"Reddit transport"`
	RedditBaseURL   string `long:"reddit-base-url" env:"REDDIT_BASE_URL" default:"https://www.reddit.com" description:"Reddit base URL"`
	RedditUserAgent string `long:"reddit-user-agent" env:"REDDIT_USER_AGENT" default:"trend-comb/1.0" description:"User agent sent to Reddit"`

	// Network proxy
	UseProxy   bool   `long:"use-proxy" env:"USE_PROXY" description:"Route outbound platform requests through a proxy"`
	HTTPProxy  string `long:"http-proxy" env:"HTTP_PROXY" description:"Proxy for plain HTTP requests"`
	HTTPSProxy string `long:"https-proxy" env:"HTTPS_PROXY" description:"Proxy for HTTPS requests"`

	// Insight provider
	InsightProvider  string `long:"insight-provider" env:"INSIGHT_PROVIDER" default:"zhipu" choice:"zhipu" choice:"lexical" description:"Insight synthesizer"`
	ZhipuAPIKey      string `long:"zhipu-api-key" env:"ZHIPU_API_KEY" description:"Zhipu AI API key"`
	LLMBaseURL       string `long:"llm-base-url" env:"LLM_BASE_URL" default:"https://open.bigmodel.cn/api/paas/v4" description:"Chat completions base URL"`
	LLMModel         string `long:"llm-model" env:"LLM_MODEL" default:"glm-4-flash" description:"Chat completions model"`
	SynthesisTimeout int    `long:"synthesis-timeout" env:"SYNTHESIS_TIMEOUT" default:"60" description:"Insight synthesis deadline in seconds"`

	// Optional infrastructure
	RedisAddr    string   `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for caching insights (disabled when empty)"`
	CacheTTL     int      `long:"cache-ttl" env:"CACHE_TTL" default:"600" description:"Insight cache TTL in seconds"`
	KafkaBrokers []string `long:"kafka-broker" env:"KAFKA_BROKERS" env-delim:"," description:"Kafka brokers for insight events (disabled when empty)"`
	KafkaTopic   string   `long:"kafka-topic" env:"KAFKA_TOPIC" default:"trend-insights" description:"Kafka topic for insight events"`
	OTLPEndpoint string   `long:"otlp-endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" description:"OTLP/HTTP trace endpoint (tracing disabled when empty)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Trend Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads .env and .env.proxy (the latter overriding) into the process
// environment, then parses flags and environment into an immutable Cfg.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := loadEnvFiles(".env", ".env.proxy"); err != nil {
		return nil, err
	}
	return Parse(os.Args[1:])
}

func Parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		DatabasePath:      raw.DatabasePath,
		WatchesDir:        raw.WatchesDir,
		LexiconFile:       raw.LexiconFile,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: seconds(raw.SchedulerInterval),
		UseMockData:       raw.UseMockData,
		FixturesFile:      raw.FixturesFile,
		FetchTimeout:      seconds(raw.FetchTimeout),
		TwitterAPIKey:     raw.TwitterAPIKey,
		TwitterBaseURL:    raw.TwitterBaseURL,
		RedditMode:        raw.RedditMode,
		RedditBaseURL:     raw.RedditBaseURL,
		RedditUserAgent:   raw.RedditUserAgent,
		UseProxy:          raw.UseProxy,
		HTTPProxy:         raw.HTTPProxy,
		HTTPSProxy:        raw.HTTPSProxy,
		InsightProvider:   raw.InsightProvider,
		ZhipuAPIKey:       raw.ZhipuAPIKey,
		LLMBaseURL:        raw.LLMBaseURL,
		LLMModel:          raw.LLMModel,
		SynthesisTimeout:  seconds(raw.SynthesisTimeout),
		RedisAddr:         raw.RedisAddr,
		CacheTTL:          seconds(raw.CacheTTL),
		KafkaBrokers:      append([]string(nil), raw.KafkaBrokers...),
		KafkaTopic:        raw.KafkaTopic,
		OTLPEndpoint:      raw.OTLPEndpoint,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	if raw.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive")
	}
	if raw.SchedulerInterval < 1 {
		return fmt.Errorf("scheduler interval must be positive")
	}

	nonNegativeFields := map[string]int{
		"fetch timeout":     raw.FetchTimeout,
		"synthesis timeout": raw.SynthesisTimeout,
		"cache TTL":         raw.CacheTTL,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if raw.UseProxy && raw.HTTPProxy == "" && raw.HTTPSProxy == "" {
		return fmt.Errorf("use-proxy requires http-proxy or https-proxy")
	}

	return nil
}

func loadEnvFiles(base, override string) error {
	if err := godotenv.Load(base); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", base, err)
	}
	if err := godotenv.Overload(override); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", override, err)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
