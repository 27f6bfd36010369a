// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gitscout/internal/model"
)

const keyPrefix = "trending:"

// Connect creates a Redis client from a redis:// URL and verifies it with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Redis is a Cache shared between service instances. Backend errors are logged
// and treated as misses so a Redis outage only costs extra GitHub calls.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis-backed cache whose entries expire ttl after being stored.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key Key) ([]model.Repository, bool) {
	val, err := r.client.Get(ctx, keyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("Trending cache get failed", "key", key.String(), "error", err)
		return nil, false
	}

	var repos []model.Repository
	if err := json.Unmarshal(val, &repos); err != nil {
		r.logger.Warn("Trending cache entry is corrupt", "key", key.String(), "error", err)
		return nil, false
	}
	return repos, true
}

func (r *Redis) Set(ctx context.Context, key Key, repos []model.Repository) {
	if repos == nil {
		repos = []model.Repository{}
	}
	val, err := json.Marshal(repos)
	if err != nil {
		r.logger.Warn("Trending cache encode failed", "key", key.String(), "error", err)
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key.String(), val, r.ttl).Err(); err != nil {
		r.logger.Warn("Trending cache set failed", "key", key.String(), "error", err)
	}
}
