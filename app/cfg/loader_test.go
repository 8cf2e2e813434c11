package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 60*time.Second {
		t.Errorf("Expected scheduler interval 60s, got %v", cfg.SchedulerInterval)
	}
	if cfg.FetchTimeout != 0 {
		t.Errorf("Expected no fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.RedditMode != RedditModeJSON {
		t.Errorf("Expected reddit mode 'json', got '%s'", cfg.RedditMode)
	}
	if cfg.InsightProvider != InsightProviderZhipu {
		t.Errorf("Expected insight provider 'zhipu', got '%s'", cfg.InsightProvider)
	}
	if cfg.LLMModel != "glm-4-flash" {
		t.Errorf("Expected model 'glm-4-flash', got '%s'", cfg.LLMModel)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %v", cfg.CacheTTL)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("USE_MOCK_DATA", "true")
	t.Setenv("TWITTERAPI_IO_KEY", "tw-key")
	t.Setenv("ZHIPU_API_KEY", "zp-key")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FETCH_TIMEOUT", "15")

	cfg, err := Parse([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.UseMockData {
		t.Error("Expected mock data to be enabled")
	}
	if cfg.TwitterAPIKey != "tw-key" {
		t.Errorf("Expected twitter key 'tw-key', got '%s'", cfg.TwitterAPIKey)
	}
	if cfg.ZhipuAPIKey != "zp-key" {
		t.Errorf("Expected zhipu key 'zp-key', got '%s'", cfg.ZhipuAPIKey)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("Expected 2 kafka brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected fetch timeout 15s, got %v", cfg.FetchTimeout)
	}
}

func TestParseFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := Parse([]string{"--port", "9100", "--reddit-mode", "rss"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "9100" {
		t.Errorf("Expected port '9100', got '%s'", cfg.Port)
	}
	if cfg.RedditMode != RedditModeRSS {
		t.Errorf("Expected reddit mode 'rss', got '%s'", cfg.RedditMode)
	}
}

func TestParseInvalid(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown reddit mode", []string{"--reddit-mode", "praw"}},
		{"unknown insight provider", []string{"--insight-provider", "gpt"}},
		{"zero workers", []string{"--worker-count", "0"}},
		{"negative fetch timeout", []string{"--fetch-timeout=-1"}},
		{"proxy without address", []string{"--use-proxy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.args); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	cfg, err := Parse([]string{"--help"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Error("Expected nil config when help is requested")
	}
}

func TestLoadEnvFilesOverride(t *testing.T) {
	tempDir := t.TempDir()
	base := filepath.Join(tempDir, ".env")
	override := filepath.Join(tempDir, ".env.proxy")

	if err := os.WriteFile(base, []byte("TREND_COMB_TEST_PROXY=base\nTREND_COMB_TEST_ONLY_BASE=yes\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(override, []byte("TREND_COMB_TEST_PROXY=override\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TREND_COMB_TEST_PROXY", "")
	t.Setenv("TREND_COMB_TEST_ONLY_BASE", "")
	os.Unsetenv("TREND_COMB_TEST_PROXY")
	os.Unsetenv("TREND_COMB_TEST_ONLY_BASE")

	if err := loadEnvFiles(base, override); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("TREND_COMB_TEST_PROXY"); got != "override" {
		t.Errorf("Expected 'override', got '%s'", got)
	}
	if got := os.Getenv("TREND_COMB_TEST_ONLY_BASE"); got != "yes" {
		t.Errorf("Expected 'yes', got '%s'", got)
	}
}

func TestLoadEnvFilesMissing(t *testing.T) {
	tempDir := t.TempDir()

	err := loadEnvFiles(filepath.Join(tempDir, ".env"), filepath.Join(tempDir, ".env.proxy"))
	if err != nil {
		t.Errorf("Expected missing env files to be ignored, got %v", err)
	}
}
