package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks that Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// AcquireLock takes the named lock for ttl. The returned token must be
// passed to ReleaseLock; ok is false when someone else holds the lock.
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.New().String()
	ok, err = c.rdb.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseLock deletes the lock only if it is still held with token
func (c *Client) ReleaseLock(ctx context.Context, name, token string) error {
	if err := c.releaseScript.Run(ctx, c.rdb, []string{lockKey(name)}, token).Err(); err != nil {
		return fmt.Errorf("release lock script failed: %w", err)
	}
	return nil
}

// RememberIdempotencyKey stores the value produced for an idempotency key
func (c *Client) RememberIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), value, ttl).Err()
}

// LookupIdempotencyKey returns the value stored for key, if any
func (c *Client) LookupIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetJSON decodes the cached document at key into dest; found is false on a miss
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON caches value at key for ttl
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func lockKey(name string) string {
	return fmt.Sprintf("lock:%s", name)
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
