package api

import (
	"context"
	"time"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/feed"
	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/sentiment"
	"github.com/lysyi3m/trend-comb/app/trends"
	"github.com/lysyi3m/trend-comb/app/watch"
)

const (
	defaultPostsLimit = 50
	maxPostsLimit     = 500
)

// Analyzer runs the trend pipeline. Implemented by trends.Orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, query string) ([]insight.Insight, error)
	Sources() []string
}

var _ Analyzer = (*trends.Orchestrator)(nil)

type Classifier interface {
	Classify(text string) sentiment.Label
}

// HealthChecker reports whether an optional dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HandlerOption func(*Handler)

type Handler struct {
	analyzer    Analyzer
	classifier  Classifier
	postRepo    database.PostRepository
	watchRepo   database.WatchRepository
	configCache *watch.ConfigCache
	generator   *feed.Generator
	cache       HealthChecker
	version     string
	startedAt   time.Time
}

type AnalyzeQuery struct {
	Query string `form:"query" binding:"required,max=50"`
}

type AnalysisRequest struct {
	Text string `json:"text" binding:"required"`
}

type AnalysisResponse struct {
	Text      string          `json:"text"`
	Sentiment sentiment.Label `json:"sentiment"`
}

// SeedPost is one record of a seed payload.
type SeedPost struct {
	Platform  string    `json:"platform" binding:"required"`
	Author    string    `json:"author"`
	Text      string    `json:"text" binding:"required"`
	URL       string    `json:"url" binding:"required"`
	Likes     int       `json:"likes" binding:"min=0"`
	CreatedAt time.Time `json:"created_at" binding:"required"`
}

type SeedResponse struct {
	Message        string `json:"message"`
	Added          int    `json:"added"`
	TotalPostsInDB int    `json:"total_posts_in_db"`
}

type PostsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
