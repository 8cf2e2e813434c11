package source

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendcomb_source_fetch_total",
		Help: "Source fetches by outcome.",
	}, []string{"source", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trendcomb_source_fetch_duration_seconds",
		Help:    "Time spent fetching from a source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	droppedPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trendcomb_source_dropped_posts_total",
		Help: "Posts discarded because they failed validation.",
	}, []string{"source"})
)
