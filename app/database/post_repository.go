package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ PostRepository = (*PostRepo)(nil)

type PostRepo struct {
	db  *DB
	now func() time.Time
}

func NewPostRepository(db *DB) *PostRepo {
	return &PostRepo{db: db, now: time.Now}
}

// InsertPosts stores posts in one transaction and returns how many were new.
// A post whose URL is already stored is skipped.
func (r *PostRepo) InsertPosts(ctx context.Context, posts []Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (platform, author, text, url, likes, created_at, sentiment, query, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ingestedAt := r.now().UTC().Unix()
	added := 0
	for _, p := range posts {
		sentiment := p.Sentiment
		if sentiment == "" {
			sentiment = "neutral"
		}

		res, err := stmt.ExecContext(ctx, p.Platform, p.Author, p.Text, p.URL, max(p.Likes, 0),
			p.CreatedAt.UTC().Unix(), sentiment, p.Query, ingestedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert post %s: %w", p.URL, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit posts: %w", err)
	}

	return added, nil
}

func (r *PostRepo) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

// GetRecentPosts returns the newest posts first.
func (r *PostRepo) GetRecentPosts(ctx context.Context, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, author, text, url, likes, created_at, sentiment, query, ingested_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// GetPostsByQuery returns the newest posts ingested for one query.
func (r *PostRepo) GetPostsByQuery(ctx context.Context, query string, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, author, text, url, likes, created_at, sentiment, query, ingested_at
		FROM posts
		WHERE query = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts for query: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// GetSentimentCounts counts stored posts per label for one ingestion query.
func (r *PostRepo) GetSentimentCounts(ctx context.Context, query string) (SentimentCounts, error) {
	var counts SentimentCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0)
		FROM posts
		WHERE query = ?
	`, query).Scan(&counts.Positive, &counts.Negative, &counts.Neutral)

	if err != nil {
		return SentimentCounts{}, fmt.Errorf("failed to get sentiment counts: %w", err)
	}

	return counts, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	posts := []Post{}
	for rows.Next() {
		var p Post
		var createdAt, ingestedAt int64
		err := rows.Scan(&p.ID, &p.Platform, &p.Author, &p.Text, &p.URL, &p.Likes,
			&createdAt, &p.Sentiment, &p.Query, &ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		p.IngestedAt = time.Unix(ingestedAt, 0).UTC()
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}
