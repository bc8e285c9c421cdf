// Package redis implements the session cache on top of Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/filesmanager/shared/config"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Connect opens a client and pings the server.
func Connect(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Public.Redis.Addr,
		Password: cfg.Private.RedisPassword,
		DB:       cfg.Public.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Log.Info("redis connected", "addr", cfg.Public.Redis.Addr)
	return client, nil
}

// Cache is a string key/value store with per-key expiry.
type Cache struct {
	client *goredis.Client
}

func New(client *goredis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns errors.ErrNotFound for missing or expired keys.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Del removes the key and reports whether it existed.
// Deleting a missing key is not an error.
func (c *Cache) Del(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
