package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/watch"
)

const (
	queueSize     = 300
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache *watch.ConfigCache
	watchRepo   database.WatchRepository
	postRepo    database.PostRepository
	collector   Collector
	classifier  Classifier
	interval    time.Duration
	workerCount int
	now         func() time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *watch.ConfigCache, watchRepo database.WatchRepository, postRepo database.PostRepository,
	collector Collector, classifier Classifier, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache: configCache,
		watchRepo:   watchRepo,
		postRepo:    postRepo,
		collector:   collector,
		classifier:  classifier,
		interval:    interval,
		workerCount: max(workerCount, 1),
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers to exit. Tasks still
// queued are dropped.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueStartupTasks registers every watch and ingests the enabled ones right
// away. Registration runs inline so the watch row exists before ingestion
// records its fetch schedule.
func (s *Scheduler) enqueueStartupTasks() {
	watchConfigs := s.configCache.GetConfigs()
	if len(watchConfigs) == 0 {
		slog.Debug("No watch configurations found")
		return
	}

	slog.Debug("Processing watch configurations", "count", len(watchConfigs))

	for _, watchConfig := range watchConfigs {
		syncTask := NewSyncWatchConfigTask(watchConfig, s.watchRepo)
		syncTask.Start()
		if err := syncTask.Execute(s.ctx); err != nil {
			slog.Warn("Failed to sync watch configuration", "watch", watchConfig.Name, "error", err)
			tasksTotal.WithLabelValues(string(TaskTypeSyncWatchConfig), "failed").Inc()
			continue
		}
		tasksTotal.WithLabelValues(string(TaskTypeSyncWatchConfig), "ok").Inc()

		if !watchConfig.Settings.Enabled {
			slog.Debug("Watch disabled, skipping IngestWatchTask", "watch", watchConfig.Name)
			continue
		}

		s.enqueueIngest(watchConfig)
	}
}

func (s *Scheduler) enqueueTasks() {
	watchConfigs := s.configCache.GetEnabledConfigs()
	if len(watchConfigs) == 0 {
		slog.Debug("No enabled watch configurations found")
		return
	}

	slog.Debug("Processing enabled watch configurations for task scheduling", "count", len(watchConfigs))

	now := s.now().UTC()
	for _, watchConfig := range watchConfigs {
		w, err := s.watchRepo.GetWatch(s.ctx, watchConfig.Name)
		if err != nil {
			slog.Warn("Failed to get watch from database, skipping", "watch", watchConfig.Name, "error", err)
			continue
		}
		if w == nil {
			slog.Warn("Watch not found in database, skipping", "watch", watchConfig.Name)
			continue
		}

		if w.NextFetchAt != nil && w.NextFetchAt.After(now) {
			slog.Debug("Watch not due for refresh yet", "watch", watchConfig.Name, "next_fetch_at", w.NextFetchAt)
			continue
		}

		s.enqueueIngest(watchConfig)
	}
}

func (s *Scheduler) enqueueIngest(watchConfig *watch.Config) {
	task := NewIngestWatchTask(watchConfig, s.collector, s.classifier, s.watchRepo, s.postRepo)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue IngestWatchTask", "watch", watchConfig.Name, "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		tasksTotal.WithLabelValues(string(task.GetType()), "ok").Inc()
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		tasksTotal.WithLabelValues(string(task.GetType()), "failed").Inc()
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	tasksTotal.WithLabelValues(string(task.GetType()), "retried").Inc()
	task.IncrementRetryCount()
	retryDelay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryDelay doubles from one second and caps at maxRetryDelay.
func retryDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(retryCount-1))*time.Second, maxRetryDelay)
}
