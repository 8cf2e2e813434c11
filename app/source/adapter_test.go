package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/trend-comb/app/post"
)

type fetcherFunc func(ctx context.Context, query string, limit int) ([]post.Post, error)

func (f fetcherFunc) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	return f(ctx, query, limit)
}

func validPost(url string) post.Post {
	return post.Post{
		Platform:  post.PlatformTwitter,
		Text:      "text for " + url,
		URL:       url,
		CreatedAt: time.Now(),
	}
}

func TestAdapterFetchReturnsPosts(t *testing.T) {
	adapter := NewAdapter("test", fetcherFunc(func(ctx context.Context, query string, limit int) ([]post.Post, error) {
		return []post.Post{validPost("u1"), validPost("u2")}, nil
	}))

	posts := adapter.Fetch(context.Background(), "golang", 10)

	if len(posts) != 2 {
		t.Errorf("Expected 2 posts, got %d", len(posts))
	}
	if adapter.Name() != "test" {
		t.Errorf("Expected name 'test', got '%s'", adapter.Name())
	}
}

func TestAdapterFetchSwallowsErrors(t *testing.T) {
	adapter := NewAdapter("broken", fetcherFunc(func(ctx context.Context, query string, limit int) ([]post.Post, error) {
		return nil, errors.New("connection refused")
	}))

	posts := adapter.Fetch(context.Background(), "golang", 10)

	if posts == nil {
		t.Error("Expected empty slice, got nil")
	}
	if len(posts) != 0 {
		t.Errorf("Expected 0 posts, got %d", len(posts))
	}
}

func TestAdapterFetchRecoversPanics(t *testing.T) {
	adapter := NewAdapter("panicky", fetcherFunc(func(ctx context.Context, query string, limit int) ([]post.Post, error) {
		panic("unexpected payload")
	}))

	posts := adapter.Fetch(context.Background(), "golang", 10)

	if len(posts) != 0 {
		t.Errorf("Expected 0 posts, got %d", len(posts))
	}
}

func TestAdapterFetchDropsInvalidPosts(t *testing.T) {
	adapter := NewAdapter("sloppy", fetcherFunc(func(ctx context.Context, query string, limit int) ([]post.Post, error) {
		noURL := validPost("")
		noText := validPost("u3")
		noText.Text = ""
		return []post.Post{validPost("u1"), noURL, noText, validPost("u2")}, nil
	}))

	posts := adapter.Fetch(context.Background(), "golang", 10)

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[0].URL != "u1" || posts[1].URL != "u2" {
		t.Errorf("Unexpected posts: %s, %s", posts[0].URL, posts[1].URL)
	}
}

func TestAdapterFetchClampsLimit(t *testing.T) {
	var requested int
	adapter := NewAdapter("counting", fetcherFunc(func(ctx context.Context, query string, limit int) ([]post.Post, error) {
		requested = limit
		return []post.Post{validPost("u1"), validPost("u2"), validPost("u3")}, nil
	}))

	adapter.Fetch(context.Background(), "golang", 0)
	if requested != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, requested)
	}

	adapter.Fetch(context.Background(), "golang", 10000)
	if requested != MaxLimit {
		t.Errorf("Expected max limit %d, got %d", MaxLimit, requested)
	}

	posts := adapter.Fetch(context.Background(), "golang", 2)
	if len(posts) != 2 {
		t.Errorf("Expected output truncated to 2, got %d", len(posts))
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{-1, DefaultLimit},
		{0, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}

	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.expected {
			t.Errorf("ClampLimit(%d): expected %d, got %d", tt.in, tt.expected, got)
		}
	}
}
