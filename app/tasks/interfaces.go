package tasks

import (
	"context"

	"github.com/lysyi3m/trend-comb/app/post"
	"github.com/lysyi3m/trend-comb/app/sentiment"
)

// TaskSchedulerInterface is what the rest of the application needs from the
// background worker pool.
//
//	scheduler := NewScheduler(configCache, watchRepo, postRepo, orchestrator, classifier, time.Minute, 3)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewStorePostsTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Collector fetches and merges posts for a query. Implemented by trends.Orchestrator.
type Collector interface {
	Collect(ctx context.Context, query string, limit int) ([]post.Post, error)
}

type Classifier interface {
	Classify(text string) sentiment.Label
}
