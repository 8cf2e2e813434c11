package source

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/trend-comb/app/cfg"
	"github.com/lysyi3m/trend-comb/app/post"
	"github.com/lysyi3m/trend-comb/app/source/fixture"
	"github.com/lysyi3m/trend-comb/app/source/mock"
	"github.com/lysyi3m/trend-comb/app/source/reddit"
	"github.com/lysyi3m/trend-comb/app/source/twitter"
)

// FromConfig selects one variant per platform and returns the sources in
// merge priority order: twitter first, then reddit.
func FromConfig(c *cfg.Cfg) ([]Source, error) {
	if c.UseMockData {
		return offlineSources(c)
	}

	httpClient, err := NewHTTPClient(TransportOptions{
		UseProxy:   c.UseProxy,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
		UserAgent:  c.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	transport := "direct"
	if c.UseProxy {
		transport = "proxy"
	}

	var sources []Source

	if c.TwitterAPIKey != "" {
		client := twitter.NewClient(c.TwitterAPIKey,
			twitter.WithHTTPClient(httpClient),
			twitter.WithBaseURL(c.TwitterBaseURL))
		sources = append(sources, NewAdapter("twitter/"+transport, client))
	} else {
		slog.Warn("Twitter API key not configured, twitter source disabled")
	}

	redditOpts := []reddit.ClientOption{
		reddit.WithHTTPClient(httpClient),
		reddit.WithBaseURL(c.RedditBaseURL),
		reddit.WithUserAgent(c.RedditUserAgent),
	}

	switch c.RedditMode {
	case cfg.RedditModeRSS:
		sources = append(sources, NewAdapter("reddit-rss/"+transport, reddit.NewRSSClient(redditOpts...)))
	default:
		sources = append(sources, NewAdapter("reddit/"+transport, reddit.NewJSONClient(redditOpts...)))
	}

	return sources, nil
}

func offlineSources(c *cfg.Cfg) ([]Source, error) {
	if c.FixturesFile != "" {
		posts, err := fixture.Load(c.FixturesFile)
		if err != nil {
			return nil, err
		}

		slog.Info("Replaying fixture posts", "file", c.FixturesFile, "posts", len(posts))

		return []Source{
			NewAdapter("twitter/fixture", fixture.NewReplayer(post.PlatformTwitter, posts)),
			NewAdapter("reddit/fixture", fixture.NewReplayer(post.PlatformReddit, posts)),
		}, nil
	}

	slog.Info("Generating mock posts")

	return []Source{
		NewAdapter("twitter/mock", mock.NewGenerator(post.PlatformTwitter)),
		NewAdapter("reddit/mock", mock.NewGenerator(post.PlatformReddit)),
	}, nil
}
