package flatpage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore is a read-through Redis cache in front of another Store. Only
// FindExact hits are cached; misses and listings always reach the inner store.
// Cache failures are logged and otherwise ignored.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewCachedStore wraps inner. A nil client turns the cache off.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, prefix string, logger *slog.Logger) *CachedStore {
	if prefix == "" {
		prefix = "scutils:flatpage:"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{Store: inner, client: client, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *CachedStore) FindExact(ctx context.Context, url string) (Page, bool, error) {
	if c.client == nil {
		return c.Store.FindExact(ctx, url)
	}

	key := c.key(url)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p Page
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return p, true, nil
		}
		c.logger.Debug("flatpage cache decode", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Debug("flatpage cache get", "key", key, "error", err)
	}

	p, ok, err := c.Store.FindExact(ctx, url)
	if err != nil || !ok {
		return p, ok, err
	}
	if payload, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Debug("flatpage cache set", "key", key, "error", err)
		}
	}
	return p, true, nil
}

func (c *CachedStore) FindForSite(ctx context.Context, url string, siteID int) (Page, bool, error) {
	p, ok, err := c.FindExact(ctx, url)
	if err != nil || !ok || !p.OnSite(siteID) {
		return Page{}, false, err
	}
	return p, true, nil
}

func (c *CachedStore) Save(ctx context.Context, p Page) error {
	if err := c.Store.Save(ctx, p); err != nil {
		return err
	}
	if c.client == nil {
		return nil
	}
	key := c.key(NormalizeURL(p.URL))
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("flatpage cache invalidate", "key", key, "error", err)
	}
	return nil
}

// Close releases the Redis connection, if any.
func (c *CachedStore) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *CachedStore) key(url string) string {
	return c.prefix + url
}
