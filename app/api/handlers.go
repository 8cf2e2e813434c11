package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/feed"
	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/post"
	"github.com/lysyi3m/trend-comb/app/sentiment"
	"github.com/lysyi3m/trend-comb/app/trends"
	"github.com/lysyi3m/trend-comb/app/watch"
)

func WithCacheHealth(checker HealthChecker) HandlerOption {
	return func(h *Handler) {
		h.cache = checker
	}
}

func NewHandler(analyzer Analyzer, classifier Classifier, postRepo database.PostRepository,
	watchRepo database.WatchRepository, configCache *watch.ConfigCache, version string, opts ...HandlerOption) *Handler {
	h := &Handler{
		analyzer:    analyzer,
		classifier:  classifier,
		postRepo:    postRepo,
		watchRepo:   watchRepo,
		configCache: configCache,
		generator:   feed.NewGenerator(version),
		version:     version,
		startedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) AnalyzeTrends(c *gin.Context) {
	var q AnalyzeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("query parameter is required and must be 1 to %d characters", trends.MaxQueryLength)})
		return
	}
	if err := trends.ValidateQuery(q.Query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	insights, err := h.analyzer.Analyze(c.Request.Context(), q.Query)
	if err != nil {
		status, message := analyzeErrorResponse(err)
		slog.Error("Trend analysis failed", "query", q.Query, "status", status, "error", err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, insights)
}

func analyzeErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, trends.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "Trend analysis timed out"
	case errors.Is(err, insight.ErrUnavailable):
		return http.StatusServiceUnavailable, "Insight provider is not available"
	default:
		return http.StatusInternalServerError, "Failed to analyze trends"
	}
}

func (h *Handler) AnalyzeText(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must not be empty"})
		return
	}

	label := h.classifier.Classify(req.Text)
	slog.Debug("Text classified", "sentiment", string(label), "length", len(req.Text))

	c.JSON(http.StatusOK, AnalysisResponse{Text: req.Text, Sentiment: label})
}

// Seed stores posts idempotently by URL and reports how many were new.
func (h *Handler) Seed(c *gin.Context) {
	var seed []SeedPost
	if err := c.ShouldBindJSON(&seed); err != nil {
		slog.Debug("Invalid seed payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seed payload must be a JSON array of posts with platform, text, url and created_at"})
		return
	}

	records := make([]database.Post, 0, len(seed))
	for i, s := range seed {
		p := post.Post{
			Platform:  post.Platform(strings.ToLower(strings.TrimSpace(s.Platform))),
			Author:    s.Author,
			Text:      s.Text,
			URL:       s.URL,
			Likes:     s.Likes,
			CreatedAt: s.CreatedAt,
		}
		if err := p.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("post at index %d: %v", i, err)})
			return
		}

		records = append(records, database.Post{
			Platform:  string(p.Platform),
			Author:    p.Author,
			Text:      p.Text,
			URL:       p.URL,
			Likes:     p.Likes,
			CreatedAt: p.CreatedAt,
			Sentiment: string(h.classifier.Classify(p.Text)),
		})
	}

	ctx := c.Request.Context()

	added, err := h.postRepo.InsertPosts(ctx, records)
	if err != nil {
		slog.Error("Database error", "operation", "seed_posts", "posts", len(records), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed database"})
		return
	}

	total, err := h.postRepo.GetPostCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "count_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed database"})
		return
	}

	slog.Info("Seed completed", "received", len(records), "added", added, "total", total)

	c.JSON(http.StatusOK, SeedResponse{
		Message:        fmt.Sprintf("Seeding complete. Added %d new posts.", added),
		Added:          added,
		TotalPostsInDB: total,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"timestamp":      time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
		"sources":        h.analyzer.Sources(),
		"loaded_watches": h.configCache.GetConfigCount(),
	}

	if postCount, err := h.postRepo.GetPostCount(ctx); err == nil {
		health["posts"] = postCount
	} else {
		slog.Warn("Database error", "operation", "count_posts", "error", err)
	}

	if watchCount, err := h.watchRepo.GetWatchCount(ctx); err == nil {
		health["watches"] = watchCount
	}

	if h.cache != nil {
		if err := h.cache.Health(ctx); err != nil {
			slog.Warn("Insight cache unreachable", "error", err)
			health["cache"] = "unavailable"
		} else {
			health["cache"] = "ok"
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListWatches(c *gin.Context) {
	ctx := c.Request.Context()
	configs := h.configCache.GetConfigs()

	watches := make([]map[string]interface{}, 0, len(configs))
	for _, watchConfig := range configs {
		info := map[string]interface{}{
			"name":             watchConfig.Name,
			"query":            watchConfig.Query,
			"enabled":          watchConfig.Settings.Enabled,
			"max_items":        watchConfig.Settings.MaxItems,
			"refresh_interval": watchConfig.Settings.RefreshEvery().String(),
			"timeout":          watchConfig.Settings.FetchTimeout().String(),
		}

		if w, err := h.watchRepo.GetWatch(ctx, watchConfig.Name); err == nil && w != nil {
			info["last_fetched_at"] = w.LastFetchedAt
			info["next_fetch_at"] = w.NextFetchAt
			info["updated_at"] = w.UpdatedAt
		}

		watches = append(watches, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"watches": watches,
		"total":   len(watches),
	})
}

func (h *Handler) GetWatchSentiment(c *gin.Context) {
	name := c.Param("name")

	watchConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Debug("Watch configuration not found", "watch", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Watch not found"})
		return
	}

	counts, err := h.postRepo.GetSentimentCounts(c.Request.Context(), watchConfig.Query)
	if err != nil {
		slog.Error("Database error", "operation", "sentiment_counts", "watch", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	overall := sentiment.Score{Positive: counts.Positive, Negative: counts.Negative}.Label()

	c.JSON(http.StatusOK, gin.H{
		"watch":     name,
		"query":     watchConfig.Query,
		"sentiment": counts,
		"total":     counts.Total(),
		"overall":   overall,
	})
}

// GetWatchFeed renders the archived posts of a watch as RSS.
func (h *Handler) GetWatchFeed(c *gin.Context) {
	name := c.Param("name")

	watchConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Debug("Watch configuration not found", "watch", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	posts, err := h.postRepo.GetPostsByQuery(c.Request.Context(), watchConfig.Query, watchConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_posts_by_query", "watch", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	channel := feed.Channel{
		Name:     name,
		Query:    watchConfig.Query,
		SelfLink: selfLink(c),
	}

	rss, err := h.generator.Run(channel, posts)
	if err != nil {
		slog.Error("RSS generation error", "watch", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))
	c.Header("X-Feed-Name", name)

	c.String(http.StatusOK, rss)
}

func selfLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}

func (h *Handler) ListPosts(c *gin.Context) {
	var q PostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxPostsLimit)})
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultPostsLimit
	}

	posts, err := h.postRepo.GetRecentPosts(c.Request.Context(), q.Limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, gin.H{
			"id":          p.ID,
			"platform":    p.Platform,
			"author":      p.Author,
			"text":        p.Text,
			"url":         p.URL,
			"likes":       p.Likes,
			"created_at":  p.CreatedAt,
			"sentiment":   p.Sentiment,
			"query":       p.Query,
			"ingested_at": p.IngestedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": items,
		"total": len(items),
	})
}
