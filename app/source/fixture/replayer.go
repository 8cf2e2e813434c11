package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lysyi3m/trend-comb/app/post"
)

// Replayer serves posts recorded in a local JSON file. The file is read once;
// every Fetch filters the same in-memory snapshot.
type Replayer struct {
	platform post.Platform
	posts    []post.Post
}

func NewReplayer(platform post.Platform, posts []post.Post) *Replayer {
	own := make([]post.Post, 0, len(posts))
	for _, p := range posts {
		if p.Platform == platform {
			own = append(own, p)
		}
	}
	return &Replayer{platform: platform, posts: own}
}

// Load reads a JSON array of posts. Records without created_at are stamped
// with the file's modification time so replays stay stable.
func Load(path string) ([]post.Post, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixtures file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file: %w", err)
	}

	posts := make([]post.Post, 0, len(records))
	for _, r := range records {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = info.ModTime().UTC()
		}
		posts = append(posts, post.Post{
			Platform:  post.Platform(strings.ToLower(r.Platform)),
			Author:    r.Author,
			Text:      r.Text,
			URL:       r.URL,
			Likes:     r.Likes,
			CreatedAt: createdAt,
		})
	}

	return posts, nil
}

func (r *Replayer) Fetch(ctx context.Context, query string, limit int) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]post.Post, 0, min(limit, len(r.posts)))

	for _, p := range r.posts {
		if !strings.Contains(strings.ToLower(p.Text), needle) {
			continue
		}
		matched = append(matched, p)
		if len(matched) == limit {
			break
		}
	}

	return matched, nil
}

type record struct {
	Platform  string    `json:"platform"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}
