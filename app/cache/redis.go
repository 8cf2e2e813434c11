package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"

	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/trends"
)

var _ trends.Cache = (*Cache)(nil)

// store is the slice of Redis the cache needs.
type store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Cache keeps finished insight lists in Redis, one key per normalized query.
type Cache struct {
	store store
	ttl   time.Duration
}

type entry struct {
	Query    string            `json:"query"`
	Insights []insight.Insight `json:"insights"`
	CachedAt int64             `json:"cached_at"`
}

// NewCache connects to Redis at addr and fails when it cannot be reached.
func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	c := newCache(&redisStore{client: client}, ttl)
	if err := c.store.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "ttl", ttl)

	return c, nil
}

func newCache(s store, ttl time.Duration) *Cache {
	return &Cache{store: s, ttl: ttl}
}

func (c *Cache) GetInsights(ctx context.Context, query string) ([]insight.Insight, bool, error) {
	key := GenerateQueryKey(query)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil || e.Insights == nil {
		slog.Debug("Dropping unreadable cache entry", "key", key, "error", err)
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			slog.Warn("Failed to delete cache entry", "key", key, "error", delErr)
		}
		return nil, false, nil
	}

	return e.Insights, true, nil
}

func (c *Cache) SetInsights(ctx context.Context, query string, insights []insight.Insight) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry{
		Query:    query,
		Insights: insights,
		CachedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	return c.store.Set(ctx, GenerateQueryKey(query), data, c.ttl)
}

// Health reports whether Redis answers a ping.
func (c *Cache) Health(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.store.Close()
}

// GenerateQueryKey maps equivalent queries ("Go", " go ") to one key.
func GenerateQueryKey(query string) string {
	normalized := cases.Fold().String(strings.Join(strings.Fields(query), " "))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("trends:%x", hash[:8])
}

type redisStore struct {
	client *redis.Client
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
