package trends

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analyzeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendcomb_analyze_total",
		Help: "Trend requests by outcome.",
	}, []string{"outcome"})

	analyzeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendcomb_analyze_duration_seconds",
		Help:    "End-to-end trend request latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"outcome"})

	mergedPosts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trendcomb_merged_posts",
		Help:    "Posts left after merging and deduplication.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
