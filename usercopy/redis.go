package usercopy

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps user copies as plain string keys in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// ConnectRedis parses url, pings the server and returns a RedisStore.
func ConnectRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return NewRedisStore(client, prefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, subjectID, programID string) (string, bool, error) {
	code, err := r.client.Get(ctx, Key(r.prefix, subjectID, programID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load user copy: %w", err)
	}
	return code, true, nil
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, subjectID, programID, code string) error {
	if err := r.client.Set(ctx, Key(r.prefix, subjectID, programID), code, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user copy: %w", err)
	}
	return nil
}

// Backend implements Store.
func (*RedisStore) Backend() string { return "redis" }

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
