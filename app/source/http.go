package source

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type TransportOptions struct {
	UseProxy   bool
	HTTPProxy  string
	HTTPSProxy string
	Timeout    time.Duration
	UserAgent  string // sent when a request sets none
}

// NewHTTPClient builds the client shared by the platform adapters. With
// UseProxy set, requests go through HTTPSProxy or HTTPProxy by scheme,
// falling back to whichever one is configured.
func NewHTTPClient(opts TransportOptions) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if opts.UseProxy {
		proxy, err := proxyFunc(opts.HTTPProxy, opts.HTTPSProxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = proxy
	}

	var rt http.RoundTripper = transport
	if opts.UserAgent != "" {
		rt = &userAgentTransport{next: transport, userAgent: opts.UserAgent}
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(rt),
		Timeout:   opts.Timeout,
	}, nil
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

func proxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	plain, err := parseProxy(httpProxy)
	if err != nil {
		return nil, err
	}
	secure, err := parseProxy(httpsProxy)
	if err != nil {
		return nil, err
	}

	if plain == nil && secure == nil {
		return nil, fmt.Errorf("proxy enabled but no proxy address configured")
	}
	if plain == nil {
		plain = secure
	}
	if secure == nil {
		secure = plain
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" {
			return secure, nil
		}
		return plain, nil
	}, nil
}

func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", raw)
	}

	return u, nil
}
