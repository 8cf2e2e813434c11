package database

import (
	"context"
	"time"
)

type PostRepository interface {
	InsertPosts(ctx context.Context, posts []Post) (int, error)
	GetPostCount(ctx context.Context) (int, error)
	GetRecentPosts(ctx context.Context, limit int) ([]Post, error)
	GetPostsByQuery(ctx context.Context, query string, limit int) ([]Post, error)
	GetSentimentCounts(ctx context.Context, query string) (SentimentCounts, error)
}

type WatchRepository interface {
	GetWatch(ctx context.Context, name string) (*Watch, error)
	GetWatches(ctx context.Context) ([]Watch, error)
	GetWatchCount(ctx context.Context) (int, error)

	UpsertWatch(ctx context.Context, name, query string) (bool, error)
	UpdateFetchSchedule(ctx context.Context, name string, fetchedAt, nextFetch time.Time) error
}
