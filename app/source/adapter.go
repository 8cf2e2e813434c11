package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lysyi3m/trend-comb/app/post"
)

var tracer = otel.Tracer("github.com/lysyi3m/trend-comb/app/source")

var _ Source = (*Adapter)(nil)

// Adapter turns a Fetcher into a Source: it clamps the limit, drops records
// that fail validation and swallows fetch errors after logging them.
type Adapter struct {
	name    string
	fetcher Fetcher
}

func NewAdapter(name string, fetcher Fetcher) *Adapter {
	return &Adapter{name: name, fetcher: fetcher}
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) Fetch(ctx context.Context, query string, limit int) []post.Post {
	limit = ClampLimit(limit)

	ctx, span := tracer.Start(ctx, "source.fetch", trace.WithAttributes(
		attribute.String("source", a.name),
		attribute.Int("limit", limit),
	))
	defer span.End()

	start := time.Now()
	posts, err := a.safeFetch(ctx, query, limit)
	fetchDuration.WithLabelValues(a.name).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		fetchTotal.WithLabelValues(a.name, "error").Inc()
		slog.Warn("Source fetch failed", "source", a.name, "query", query, "duration", time.Since(start), "error", err)
		return []post.Post{}
	}

	valid := make([]post.Post, 0, min(len(posts), limit))
	dropped := 0
	for _, p := range posts {
		if err := p.Validate(); err != nil {
			dropped++
			slog.Debug("Dropping invalid post", "source", a.name, "url", p.URL, "error", err)
			continue
		}
		valid = append(valid, p)
		if len(valid) == limit {
			break
		}
	}

	if dropped > 0 {
		droppedPosts.WithLabelValues(a.name).Add(float64(dropped))
	}

	outcome := "ok"
	if len(valid) == 0 {
		outcome = "empty"
	}
	fetchTotal.WithLabelValues(a.name, outcome).Inc()
	span.SetAttributes(attribute.Int("posts", len(valid)))

	slog.Debug("Source fetch completed", "source", a.name, "query", query, "posts", len(valid), "dropped", dropped, "duration", time.Since(start))

	return valid
}

// A panicking client must not take the whole request down with it.
func (a *Adapter) safeFetch(ctx context.Context, query string, limit int) (posts []post.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()

	return a.fetcher.Fetch(ctx, query, limit)
}
