package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/trend-comb/app/source"
	"github.com/lysyi3m/trend-comb/app/trends"
)

var extensions = []string{".yml", ".yaml"}

// ConfigCache holds the watch files of one directory, keyed by watch name.
type ConfigCache struct {
	watchesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(watchesDir string) *ConfigCache {
	return &ConfigCache{
		watchesDir: watchesDir,
		cache:      make(map[string]*Config),
	}
}

// Run loads every watch file. A missing directory means no watches.
func (cc *ConfigCache) Run() error {
	entries, err := os.ReadDir(cc.watchesDir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Watches directory not found", "dir", cc.watchesDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read watches directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name, ok := watchName(entry.Name())
		if !ok {
			continue
		}

		config, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", entry.Name(), err)
		}

		slog.Debug("Watch loaded", "watch", name, "query", config.Query, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Config, error) {
	configFile, err := cc.configFilePath(name)
	if err != nil {
		return nil, err
	}

	config, err := parseConfig(configFile)
	if err != nil {
		return nil, err
	}
	config.Name = name

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid watch %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("watch with name '%s' not found", name)
	}
	return config, nil
}

// GetConfigs returns all watches sorted by name.
func (cc *ConfigCache) GetConfigs() []*Config {
	return cc.collect(func(*Config) bool { return true })
}

func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	return cc.collect(func(c *Config) bool { return c.Settings.Enabled })
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) collect(keep func(*Config) bool) []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.cache))
	for _, c := range cc.cache {
		if keep(c) {
			configs = append(configs, c)
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })

	return configs
}

func (cc *ConfigCache) configFilePath(name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(cc.watchesDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no watch file for '%s' in %s", name, cc.watchesDir)
}

func watchName(fileName string) (string, bool) {
	for _, ext := range extensions {
		if name, ok := strings.CutSuffix(fileName, ext); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

func parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Query = strings.TrimSpace(config.Query)

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = DefaultRefreshInterval
	}
	if config.Settings.MaxItems == 0 {
		config.Settings.MaxItems = DefaultMaxItems
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = DefaultTimeout
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if err := trends.ValidateQuery(config.Query); err != nil {
		return err
	}

	if config.Settings.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must be non-negative")
	}
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if config.Settings.MaxItems < 0 || config.Settings.MaxItems > source.MaxLimit {
		return fmt.Errorf("max items must be between 0 and %d", source.MaxLimit)
	}

	for i, filter := range config.Filters {
		if !slices.Contains(filterFields, filter.Field) {
			return fmt.Errorf("filter %d: unknown field %q", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter %d: includes or excludes required", i)
		}
	}

	return nil
}
