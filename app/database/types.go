package database

import (
	"time"
)

// Post is a stored post. URL is unique across the table.
type Post struct {
	ID         int64
	Platform   string
	Author     string
	Text       string
	URL        string
	Likes      int
	CreatedAt  time.Time
	Sentiment  string
	Query      string // empty for seeded posts
	IngestedAt time.Time
}

type Watch struct {
	Name          string // derived from the YAML filename
	Query         string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}
