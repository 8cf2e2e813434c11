package watch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/trend-comb/app/trends"
)

func writeWatch(t *testing.T, dir, file, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeWatch(t, tempDir, "golang.yml", `
query: "  golang generics "

settings:
  enabled: true
  refresh_interval: 1800
  max_items: 25
  timeout: 15
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 watch, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("golang")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "golang" {
		t.Errorf("Expected name 'golang', got '%s'", config.Name)
	}
	if config.Query != "golang generics" {
		t.Errorf("Expected trimmed query, got '%s'", config.Query)
	}
	if config.Settings.RefreshEvery() != 30*time.Minute {
		t.Errorf("Expected refresh interval 30m, got %v", config.Settings.RefreshEvery())
	}
	if config.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", config.Settings.MaxItems)
	}
	if config.Settings.FetchTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.Settings.FetchTimeout())
	}
}

func TestConfigCacheDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeWatch(t, tempDir, "rust.yaml", `
query: rust
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("rust")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.RefreshInterval != DefaultRefreshInterval {
		t.Errorf("Expected default refresh interval %d, got %d", DefaultRefreshInterval, config.Settings.RefreshInterval)
	}
	if config.Settings.MaxItems != DefaultMaxItems {
		t.Errorf("Expected default max items %d, got %d", DefaultMaxItems, config.Settings.MaxItems)
	}
	if config.Settings.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeout, config.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing query", "settings:\n  enabled: true\n"},
		{"long query", "query: " + strings.Repeat("a", trends.MaxQueryLength+1) + "\n"},
		{"negative interval", "query: go\nsettings:\n  refresh_interval: -1\n"},
		{"too many items", "query: go\nsettings:\n  max_items: 501\n"},
		{"broken yaml", "query: [go\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeWatch(t, tempDir, "bad.yml", tt.content)

			if err := NewConfigCache(tempDir).Run(); err == nil {
				t.Error("Expected error for invalid watch")
			}
		})
	}
}

func TestConfigCacheRejectsInvalidQuery(t *testing.T) {
	tempDir := t.TempDir()
	writeWatch(t, tempDir, "empty.yml", "query: \"   \"\n")

	_, err := NewConfigCache(tempDir).LoadConfig("empty")
	if !errors.Is(err, trends.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected missing directory to be ignored, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected no watches, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()
	writeWatch(t, tempDir, "b.yml", "query: b\nsettings:\n  enabled: true\n")
	writeWatch(t, tempDir, "a.yml", "query: a\nsettings:\n  enabled: true\n")
	writeWatch(t, tempDir, "c.yml", "query: c\nsettings:\n  enabled: false\n")
	writeWatch(t, tempDir, "notes.txt", "ignored")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	all := configCache.GetConfigs()
	if len(all) != 3 {
		t.Fatalf("Expected 3 watches, got %d", len(all))
	}
	if all[0].Name != "a" || all[1].Name != "b" || all[2].Name != "c" {
		t.Errorf("Expected watches sorted by name, got %s %s %s", all[0].Name, all[1].Name, all[2].Name)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 2 {
		t.Errorf("Expected 2 enabled watches, got %d", len(enabled))
	}

	if _, err := configCache.GetConfig("missing"); err == nil {
		t.Error("Expected error for unknown watch")
	}
}

func TestConfigCacheLoadsFilters(t *testing.T) {
	tempDir := t.TempDir()
	writeWatch(t, tempDir, "golang.yml", `
query: golang
settings:
  enabled: true
filters:
  - field: author
    excludes: ["bot"]
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("golang")
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Filters) != 1 || config.Filters[0].Field != "author" || config.Filters[0].Excludes[0] != "bot" {
		t.Errorf("Unexpected filters %+v", config.Filters)
	}
}

func TestConfigCacheRejectsInvalidFilters(t *testing.T) {
	cases := map[string]string{
		"unknown_field.yml": "query: golang\nfilters:\n  - field: title\n    excludes: [\"x\"]\n",
		"empty_filter.yml":  "query: golang\nfilters:\n  - field: text\n",
	}

	for file, content := range cases {
		tempDir := t.TempDir()
		writeWatch(t, tempDir, file, content)

		if err := NewConfigCache(tempDir).Run(); err == nil {
			t.Errorf("Expected error for %s", file)
		}
	}
}
