package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix   = "page:render:" // page:render:{path}|{user}|{tier}
	pathIndexPrefix = "page:path:"   // set of render keys for a path: page:path:{path}
)

// Key identifies one rendered page. The same route renders differently per
// user and per subscription tier.
type Key struct {
	Path   string
	UserID string
	Tier   string
}

func (k Key) String() string {
	return pageKeyPrefix + k.Path + "|" + k.UserID + "|" + k.Tier
}

// PageCache stores rendered pages until their route is revalidated or the
// TTL passes.
type PageCache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, page []byte) error
	Revalidate(ctx context.Context, paths ...string) error
}

type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisPageCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	page, err := c.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached page: %w", err)
	}
	return page, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key Key, page []byte) error {
	indexKey := pathIndexPrefix + key.Path

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key.String(), page, c.ttl)
	pipe.SAdd(ctx, indexKey, key.String())
	pipe.Expire(ctx, indexKey, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// revalidateScript deletes a path's index and every render it lists in one
// step, so a concurrent Set is either evicted with it or indexed afresh.
var revalidateScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
for i = 1, #keys do
	redis.call('DEL', keys[i])
end
redis.call('DEL', KEYS[1])
return #keys
`)

// Revalidate evicts every cached render of each path.
func (c *RedisPageCache) Revalidate(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if err := revalidateScript.Run(ctx, c.client, []string{pathIndexPrefix + path}).Err(); err != nil {
			return fmt.Errorf("failed to revalidate %s: %w", path, err)
		}
	}
	return nil
}

// Noop is used when no Redis URL is configured. Nothing is ever cached.
type Noop struct{}

func (Noop) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, Key, []byte) error         { return nil }
func (Noop) Revalidate(context.Context, ...string) error    { return nil }
