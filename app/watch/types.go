package watch

import "time"

// Config is one watch file: a query that is ingested periodically.
type Config struct {
	Name     string   // derived from the filename without extension
	Query    string   `yaml:"query"`
	Settings Settings `yaml:"settings"`
	Filters  []Filter `yaml:"filters"`
}

// Filter drops collected posts before they are stored. Matching is a
// case-insensitive substring test on the named field.
type Filter struct {
	Field    string   `yaml:"field"` // text, author, url or platform
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type Settings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`        // per source
	Timeout         int  `yaml:"timeout"`          // seconds
}

func (s Settings) RefreshEvery() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s Settings) FetchTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

const (
	DefaultRefreshInterval = 3600
	DefaultMaxItems        = 100
	DefaultTimeout         = 30
)
