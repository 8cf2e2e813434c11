package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/watch"
)

type SyncWatchConfigTask struct {
	Task
	WatchConfig *watch.Config
	watchRepo   database.WatchRepository
}

func NewSyncWatchConfigTask(watchConfig *watch.Config, watchRepo database.WatchRepository) *SyncWatchConfigTask {
	return &SyncWatchConfigTask{
		Task:        NewTask(TaskTypeSyncWatchConfig, watchConfig.Name),
		WatchConfig: watchConfig,
		watchRepo:   watchRepo,
	}
}

func (t *SyncWatchConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	changed, err := t.watchRepo.UpsertWatch(ctx, t.WatchConfig.Name, t.WatchConfig.Query)
	if err != nil {
		return fmt.Errorf("failed to sync watch config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncWatchConfig",
		"watch", t.Subject,
		"query_changed", changed,
		"duration", t.GetDuration())

	return nil
}
