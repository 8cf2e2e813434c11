package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/post"
)

// StorePostsTask persists the posts an on-demand analysis worked with.
type StorePostsTask struct {
	Task
	Query      string
	Posts      []post.Post
	classifier Classifier
	postRepo   database.PostRepository
}

func NewStorePostsTask(query string, posts []post.Post, classifier Classifier, postRepo database.PostRepository) *StorePostsTask {
	return &StorePostsTask{
		Task:       NewTask(TaskTypeStorePosts, query),
		Query:      query,
		Posts:      posts,
		classifier: classifier,
		postRepo:   postRepo,
	}
}

func (t *StorePostsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	added, err := t.postRepo.InsertPosts(ctx, toRecords(t.Query, t.Posts, t.classifier))
	if err != nil {
		return fmt.Errorf("failed to store posts: %w", err)
	}

	slog.Info("Task completed",
		"type", "StorePosts",
		"query", t.Query,
		"duration", t.GetDuration(),
		"total", len(t.Posts),
		"new", added)

	return nil
}

// Archiver hands analysed posts to the scheduler so the request never waits
// on the database.
type Archiver struct {
	scheduler  TaskSchedulerInterface
	classifier Classifier
	postRepo   database.PostRepository
}

func NewArchiver(scheduler TaskSchedulerInterface, classifier Classifier, postRepo database.PostRepository) *Archiver {
	return &Archiver{
		scheduler:  scheduler,
		classifier: classifier,
		postRepo:   postRepo,
	}
}

func (a *Archiver) Archive(query string, posts []post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	task := NewStorePostsTask(query, slices.Clone(posts), a.classifier, a.postRepo)
	if err := a.scheduler.EnqueueTask(task); err != nil {
		return fmt.Errorf("failed to enqueue StorePostsTask: %w", err)
	}
	return nil
}
