package cfg

import "time"

type Cfg struct {
	// Application configuration
	Port              string
	DatabasePath      string
	WatchesDir        string
	LexiconFile       string
	WorkerCount       int
	SchedulerInterval time.Duration

	// Sources
	UseMockData     bool
	FixturesFile    string
	FetchTimeout    time.Duration
	TwitterAPIKey   string
	TwitterBaseURL  string
	RedditMode      string
	RedditBaseURL   string
	RedditUserAgent string

	// Network proxy
	UseProxy   bool
	HTTPProxy  string
	HTTPSProxy string

	// Insight provider
	InsightProvider  string
	ZhipuAPIKey      string
	LLMBaseURL       string
	LLMModel         string
	SynthesisTimeout time.Duration

	// Optional infrastructure
	RedisAddr    string
	CacheTTL     time.Duration
	KafkaBrokers []string
	KafkaTopic   string
	OTLPEndpoint string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

const (
	RedditModeJSON = "json"
	RedditModeRSS  = "rss"

	InsightProviderZhipu   = "zhipu"
	InsightProviderLexical = "lexical"
)
