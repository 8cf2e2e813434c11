package post

import (
	"errors"
	"fmt"
	"time"
)

type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformReddit  Platform = "reddit"
)

var ErrInvalidPost = errors.New("invalid post")

func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformReddit:
		return true
	}
	return false
}

// Post is the normalized shape every source maps its payloads into.
// URL is the identity of a post: two posts sharing a URL are the same post.
type Post struct {
	Platform  Platform  `json:"platform"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Post) Validate() error {
	if !p.Platform.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidPost, p.Platform)
	}
	if p.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidPost)
	}
	if p.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidPost)
	}
	if p.Likes < 0 {
		return fmt.Errorf("%w: likes must be non-negative", ErrInvalidPost)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidPost)
	}
	return nil
}
