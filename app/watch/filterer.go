package watch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/trend-comb/app/post"
)

var filterFields = []string{"text", "author", "url", "platform"}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the posts that pass every filter of the watch, keeping order,
// and the number of posts dropped.
func (f *Filterer) Run(posts []post.Post, config *Config) ([]post.Post, int) {
	if len(config.Filters) == 0 {
		return posts, 0
	}

	kept := make([]post.Post, 0, len(posts))
	for _, p := range posts {
		if reason, excluded := f.applyFilters(p, config.Filters); excluded {
			slog.Debug("Post filtered", "watch", config.Name, "url", p.URL, "reason", reason)
			continue
		}
		kept = append(kept, p)
	}

	return kept, len(posts) - len(kept)
}

func (f *Filterer) applyFilters(p post.Post, filters []Filter) (string, bool) {
	for _, filter := range filters {
		value := f.getFieldValue(p, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return fmt.Sprintf("%s contains '%s'", filter.Field, exclude), true
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}

		matched := false
		for _, include := range filter.Includes {
			if f.matchesFilter(value, include) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Sprintf("%s does not contain any of %v", filter.Field, filter.Includes), true
		}
	}

	return "", false
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(p post.Post, field string) string {
	switch field {
	case "text":
		return p.Text
	case "author":
		return p.Author
	case "url":
		return p.URL
	case "platform":
		return string(p.Platform)
	default:
		return ""
	}
}
