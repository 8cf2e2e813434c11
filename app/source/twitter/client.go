package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/trend-comb/app/post"
)

const (
	DefaultBaseURL = "https://api.twitterapi.io"

	searchPath = "/twitter/tweet/advanced_search"
	maxPages   = 10
)

var ErrMissingAPIKey = errors.New("twitter API key is not configured")

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithClock overrides the time used for tweets without a parsable createdAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// Client searches recent tweets through twitterapi.io.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	now        func() time.Time
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch pages through the latest tweets matching query until limit posts
// were collected or the API runs out of pages.
func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	posts := make([]post.Post, 0, limit)
	cursor := ""

	for page := 0; page < maxPages && len(posts) < limit; page++ {
		result, err := c.search(ctx, query, cursor)
		if err != nil {
			return nil, err
		}

		for _, tw := range result.Tweets {
			posts = append(posts, c.toPost(tw))
		}

		if !result.HasNextPage || result.NextCursor == "" || len(result.Tweets) == 0 {
			break
		}
		cursor = result.NextCursor
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

func (c *Client) search(ctx context.Context, query, cursor string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("queryType", "Latest")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search tweets: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, handleAPIError(resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return &result, nil
}

func (c *Client) toPost(tw tweet) post.Post {
	author := tw.Author.UserName
	if author == "" {
		author = tw.Author.Name
	}

	link := tw.URL
	if link == "" && tw.ID != "" {
		link = fmt.Sprintf("https://x.com/%s/status/%s", valueOr(author, "i"), tw.ID)
	}

	likes := tw.LikeCount
	if likes < 0 {
		likes = 0
	}

	return post.Post{
		Platform:  post.PlatformTwitter,
		Author:    author,
		Text:      strings.TrimSpace(tw.Text),
		URL:       link,
		Likes:     likes,
		CreatedAt: c.parseCreatedAt(tw.CreatedAt),
	}
}

// twitterapi.io reports createdAt in the legacy Twitter format.
func (c *Client) parseCreatedAt(s string) time.Time {
	for _, layout := range []string{time.RubyDate, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return c.now().UTC()
}

func handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("twitter API rejected credentials (HTTP %d)", statusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("twitter API rate limit exceeded (HTTP %d)", statusCode)
	default:
		return fmt.Errorf("twitter API returned HTTP %d", statusCode)
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
