package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "trend-comb/1.0"

	// reddit caps listings at 100 children per request
	pageSize = 100
	maxPages = 5
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOption func(*options)

type options struct {
	httpClient HTTPClient
	baseURL    string
	userAgent  string
	now        func() time.Time
}

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithClock overrides the time used for posts without a timestamp.
func WithClock(now func() time.Time) ClientOption {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []ClientOption) options {
	o := options{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// reddit throttles requests carrying generic user agents
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query reddit: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, handleAPIError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("reddit rate limit exceeded (HTTP %d)", statusCode)
	case http.StatusForbidden:
		return fmt.Errorf("reddit refused the request (HTTP %d)", statusCode)
	default:
		return fmt.Errorf("reddit returned HTTP %d", statusCode)
	}
}
