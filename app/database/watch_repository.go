package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ WatchRepository = (*WatchRepo)(nil)

type WatchRepo struct {
	db  *DB
	now func() time.Time
}

func NewWatchRepository(db *DB) *WatchRepo {
	return &WatchRepo{db: db, now: time.Now}
}

// UpsertWatch registers a watch and reports whether its query changed.
// A changed query clears the fetch schedule so the watch is ingested again.
func (r *WatchRepo) UpsertWatch(ctx context.Context, name, query string) (bool, error) {
	existing, err := r.GetWatch(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check existing watch: %w", err)
	}

	now := r.now().UTC().Unix()

	if existing == nil {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO watches (name, query, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, name, query, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert watch: %w", err)
		}
		return false, nil
	}

	if existing.Query == query {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE watches
		SET query = ?, next_fetch_at = NULL, updated_at = ?
		WHERE name = ?
	`, query, now, name)
	if err != nil {
		return false, fmt.Errorf("failed to update watch: %w", err)
	}

	return true, nil
}

func (r *WatchRepo) UpdateFetchSchedule(ctx context.Context, name string, fetchedAt, nextFetch time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE watches
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, fetchedAt.UTC().Unix(), nextFetch.UTC().Unix(), r.now().UTC().Unix(), name)
	if err != nil {
		return fmt.Errorf("failed to update fetch schedule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("watch %s not found", name)
	}

	return nil
}

// GetWatch returns nil without an error when the watch is unknown.
func (r *WatchRepo) GetWatch(ctx context.Context, name string) (*Watch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, query, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM watches
		WHERE name = ?
	`, name)

	w, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %w", err)
	}

	return w, nil
}

func (r *WatchRepo) GetWatches(ctx context.Context) ([]Watch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, query, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM watches
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get watches: %w", err)
	}
	defer rows.Close()

	watches := []Watch{}
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch row: %w", err)
		}
		watches = append(watches, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watch rows: %w", err)
	}

	return watches, nil
}

func (r *WatchRepo) GetWatchCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM watches").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get watch count: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWatch(s scanner) (*Watch, error) {
	var w Watch
	var lastFetched, nextFetch sql.NullInt64
	var createdAt, updatedAt int64

	if err := s.Scan(&w.Name, &w.Query, &lastFetched, &nextFetch, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	w.LastFetchedAt = unixPtr(lastFetched)
	w.NextFetchAt = unixPtr(nextFetch)
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	w.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &w, nil
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
