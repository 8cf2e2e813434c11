package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/watch"
)

type IngestWatchTask struct {
	Task
	WatchConfig *watch.Config
	collector   Collector
	classifier  Classifier
	watchRepo   database.WatchRepository
	postRepo    database.PostRepository
	filterer    *watch.Filterer
	now         func() time.Time
}

func NewIngestWatchTask(watchConfig *watch.Config, collector Collector, classifier Classifier, watchRepo database.WatchRepository, postRepo database.PostRepository) *IngestWatchTask {
	return &IngestWatchTask{
		Task:        NewTask(TaskTypeIngestWatch, watchConfig.Name),
		WatchConfig: watchConfig,
		collector:   collector,
		classifier:  classifier,
		watchRepo:   watchRepo,
		postRepo:    postRepo,
		filterer:    watch.NewFilterer(),
		now:         time.Now,
	}
}

func (t *IngestWatchTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.WatchConfig.Settings.Enabled {
		slog.Debug("Watch disabled, skipping", "watch", t.Subject)
		return nil
	}

	fetchCtx := ctx
	if timeout := t.WatchConfig.Settings.FetchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	posts, err := t.collector.Collect(fetchCtx, t.WatchConfig.Query, t.WatchConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to collect posts: %w", err)
	}

	kept, filtered := t.filterer.Run(posts, t.WatchConfig)

	added, err := t.postRepo.InsertPosts(ctx, toRecords(t.WatchConfig.Query, kept, t.classifier))
	if err != nil {
		return fmt.Errorf("failed to store posts: %w", err)
	}

	now := t.now().UTC()
	if err := t.watchRepo.UpdateFetchSchedule(ctx, t.WatchConfig.Name, now, now.Add(t.WatchConfig.Settings.RefreshEvery())); err != nil {
		return fmt.Errorf("failed to update fetch schedule: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestWatch",
		"watch", t.Subject,
		"query", t.WatchConfig.Query,
		"duration", t.GetDuration(),
		"total", len(posts),
		"filtered", filtered,
		"new", added)

	return nil
}
