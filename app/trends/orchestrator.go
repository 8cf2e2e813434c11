package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/post"
	"github.com/lysyi3m/trend-comb/app/source"
)

var tracer = otel.Tracer("github.com/lysyi3m/trend-comb/app/trends")

type Option func(*Orchestrator)

// WithFetchTimeout bounds every source call. Zero waits for all sources.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.fetchTimeout = d
	}
}

func WithSynthesisTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.synthesisTimeout = d
	}
}

func WithLimit(limit int) Option {
	return func(o *Orchestrator) {
		o.limit = source.ClampLimit(limit)
	}
}

func WithCache(cache Cache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

func WithArchiver(archiver Archiver) Option {
	return func(o *Orchestrator) {
		o.archiver = archiver
	}
}

func WithPublisher(publisher Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// Orchestrator runs one trend request: fetch from every source concurrently,
// merge in source order, deduplicate and synthesize a single insight.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	sources          []source.Source
	synthesizer      insight.Synthesizer
	fetchTimeout     time.Duration
	synthesisTimeout time.Duration
	limit            int
	cache            Cache
	archiver         Archiver
	publisher        Publisher
}

func New(sources []source.Source, synthesizer insight.Synthesizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sources:     sources,
		synthesizer: synthesizer,
		limit:       source.DefaultLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Sources() []string {
	names := make([]string, 0, len(o.sources))
	for _, s := range o.sources {
		names = append(names, s.Name())
	}
	return names
}

func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return fmt.Errorf("%w: query must be at most %d characters, got %d", ErrInvalidQuery, MaxQueryLength, n)
	}
	return nil
}

// Analyze returns an empty list when no source found anything and a single
// insight otherwise. A cancelled ctx yields ctx's error and nothing else.
func (o *Orchestrator) Analyze(ctx context.Context, query string) ([]insight.Insight, error) {
	if err := ValidateQuery(query); err != nil {
		analyzeTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "trends.analyze", trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	start := time.Now()

	if cached, ok := o.lookupCache(ctx, query); ok {
		o.finish(span, "cached", start)
		slog.Info("Trend request served from cache", "query", query, "duration", time.Since(start))
		return cached, nil
	}

	o.transition(span, query, StateFetching)
	batches := o.fetchAll(ctx, query, o.limit)
	if err := ctx.Err(); err != nil {
		return nil, o.fail(span, query, StateFetching, start, err)
	}

	o.transition(span, query, StateMerging)
	posts := merge(batches)
	mergedPosts.Observe(float64(len(posts)))
	span.SetAttributes(attribute.Int("posts", len(posts)))

	if len(posts) == 0 {
		o.transition(span, query, StateDone)
		o.finish(span, "empty", start)
		slog.Info("Trend request found no posts", "query", query, "sources", len(o.sources), "duration", time.Since(start))
		return []insight.Insight{}, nil
	}

	if o.archiver != nil {
		if err := o.archiver.Archive(query, posts); err != nil {
			slog.Warn("Failed to archive posts", "query", query, "posts", len(posts), "error", err)
		}
	}

	o.transition(span, query, StateSynthesizing)
	result, err := o.synthesize(ctx, posts)
	if err != nil {
		return nil, o.fail(span, query, StateSynthesizing, start, fmt.Errorf("failed to synthesize insight: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, o.fail(span, query, StateSynthesizing, start, err)
	}

	insights := []insight.Insight{result}
	o.transition(span, query, StateDone)

	o.storeCache(ctx, query, insights)
	o.publish(ctx, query, insights)
	o.finish(span, "ok", start)
	slog.Info("Trend request completed", "query", query, "posts", len(posts), "duration", time.Since(start))

	return insights, nil
}

// Collect runs the fetch and merge steps only.
func (o *Orchestrator) Collect(ctx context.Context, query string, limit int) ([]post.Post, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	batches := o.fetchAll(ctx, query, limit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return merge(batches), nil
}

// fetchAll gives every source its own slot so the merge order never depends
// on which source answers first.
func (o *Orchestrator) fetchAll(ctx context.Context, query string, limit int) [][]post.Post {
	batches := make([][]post.Post, len(o.sources))

	var g errgroup.Group
	for i, src := range o.sources {
		g.Go(func() error {
			fetchCtx := ctx
			if o.fetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
				defer cancel()
			}

			batches[i] = src.Fetch(fetchCtx, query, limit)
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

func merge(batches [][]post.Post) []post.Post {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}

	all := make([]post.Post, 0, total)
	for _, batch := range batches {
		all = append(all, batch...)
	}

	return post.Dedup(all)
}

func (o *Orchestrator) synthesize(ctx context.Context, posts []post.Post) (insight.Insight, error) {
	if o.synthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.synthesisTimeout)
		defer cancel()
	}

	return o.synthesizer.Synthesize(ctx, posts)
}

func (o *Orchestrator) lookupCache(ctx context.Context, query string) ([]insight.Insight, bool) {
	if o.cache == nil {
		return nil, false
	}

	cached, ok, err := o.cache.GetInsights(ctx, query)
	if err != nil {
		slog.Warn("Insight cache lookup failed", "query", query, "error", err)
		return nil, false
	}
	return cached, ok
}

func (o *Orchestrator) storeCache(ctx context.Context, query string, insights []insight.Insight) {
	if o.cache == nil {
		return
	}
	if err := o.cache.SetInsights(ctx, query, insights); err != nil {
		slog.Warn("Failed to cache insights", "query", query, "error", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, query string, insights []insight.Insight) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.PublishInsights(ctx, query, insights); err != nil {
		slog.Warn("Failed to publish insights", "query", query, "error", err)
	}
}

func (o *Orchestrator) transition(span trace.Span, query string, state State) {
	span.AddEvent(string(state))
	slog.Debug("Trend request state", "query", query, "state", string(state))
}

func (o *Orchestrator) fail(span trace.Span, query string, from State, start time.Time, err error) error {
	o.transition(span, query, StateFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(from)+" failed")

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		o.finish(span, "cancelled", start)
		slog.Warn("Trend request cancelled", "query", query, "state", string(from), "duration", time.Since(start), "error", err)
		return err
	}

	o.finish(span, "failed", start)
	slog.Error("Trend request failed", "query", query, "state", string(from), "duration", time.Since(start), "error", err)
	return err
}

func (o *Orchestrator) finish(span trace.Span, outcome string, start time.Time) {
	analyzeTotal.WithLabelValues(outcome).Inc()
	analyzeDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("outcome", outcome))
}
