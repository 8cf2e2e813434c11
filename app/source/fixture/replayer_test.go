package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/trend-comb/app/post"
)

const testFixtures = `[
  {"platform": "twitter", "author": "a", "text": "Golang generics rock", "url": "https://x.com/a/1", "likes": 5, "created_at": "2024-12-10T07:00:30Z"},
  {"platform": "Twitter", "author": "b", "text": "Rust is fine too", "url": "https://x.com/b/2", "likes": 1, "created_at": "2024-12-10T07:00:31Z"},
  {"platform": "reddit", "author": "c", "text": "GOLANG at scale", "url": "https://reddit.com/r/go/3"},
  {"platform": "twitter", "author": "d", "text": "more golang news", "url": "https://x.com/d/4", "created_at": "2024-12-10T07:00:32Z"}
]`

func writeFixtures(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed_data.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFixtures(t, testFixtures)

	posts, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(posts) != 4 {
		t.Fatalf("Expected 4 posts, got %d", len(posts))
	}
	if posts[1].Platform != post.PlatformTwitter {
		t.Errorf("Expected platform normalized to twitter, got %q", posts[1].Platform)
	}
	if posts[2].CreatedAt.IsZero() {
		t.Error("Expected missing created_at to be stamped")
	}
	if !posts[0].CreatedAt.Equal(time.Date(2024, 12, 10, 7, 0, 30, 0, time.UTC)) {
		t.Errorf("Unexpected created_at %v", posts[0].CreatedAt)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeFixtures(t, `{"not": "an array"}`)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid JSON shape")
	}
}

func TestReplayerFetchFiltersByPlatformAndQuery(t *testing.T) {
	posts, err := Load(writeFixtures(t, testFixtures))
	if err != nil {
		t.Fatal(err)
	}

	twitter := NewReplayer(post.PlatformTwitter, posts)
	reddit := NewReplayer(post.PlatformReddit, posts)

	got, err := twitter.Fetch(context.Background(), "GoLang", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 twitter posts, got %d", len(got))
	}
	if got[0].URL != "https://x.com/a/1" || got[1].URL != "https://x.com/d/4" {
		t.Errorf("Unexpected order: %s, %s", got[0].URL, got[1].URL)
	}

	got, err = reddit.Fetch(context.Background(), "golang", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Platform != post.PlatformReddit {
		t.Errorf("Expected 1 reddit post, got %+v", got)
	}
}

func TestReplayerFetchLimitAndNoMatch(t *testing.T) {
	posts, err := Load(writeFixtures(t, testFixtures))
	if err != nil {
		t.Fatal(err)
	}

	replayer := NewReplayer(post.PlatformTwitter, posts)

	got, err := replayer.Fetch(context.Background(), "golang", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 post, got %d", len(got))
	}

	got, err = replayer.Fetch(context.Background(), "haskell", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no posts, got %d", len(got))
	}
}

func TestReplayerFetchCancelled(t *testing.T) {
	replayer := NewReplayer(post.PlatformTwitter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := replayer.Fetch(ctx, "golang", 10); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
