package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

const redisKeyPrefix = "rescue:route:"

type Cache interface {
	Get(ctx context.Context, key string) (Route, bool, error)
	Set(ctx context.Context, key string, r Route) error
}

type memoryEntry struct {
	route   Route
	expires time.Time
}

// MemoryCache is a process-local cache. A zero ttl keeps entries forever.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Route, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Route{}, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Route{}, false, nil
	}
	return e.route, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, r Route) error {
	e := memoryEntry{route: r}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Route, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Route{}, false, nil
		}
		return Route{}, false, err
	}

	var r Route
	if err := json.Unmarshal(data, &r); err != nil {
		return Route{}, false, fmt.Errorf("corrupt cached route %s: %w", key, err)
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r Route) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}

// CachedRouter consults the cache before the wrapped router. Fallback routes
// are not cached so a recovered backend is used on the next lookup. Cache
// errors are logged and bypassed.
type CachedRouter struct {
	next  Router
	cache Cache
}

func NewCachedRouter(next Router, cache Cache) *CachedRouter {
	return &CachedRouter{
		next:  next,
		cache: cache,
	}
}

func (c *CachedRouter) Route(ctx context.Context, from, to models.Coordinate) (Route, error) {
	key := Key(from, to)

	r, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("route cache read failed", "key", key, "error", err)
	} else if ok {
		slog.Debug("route cache hit", "key", key)
		return r, nil
	}

	r, err = c.next.Route(ctx, from, to)
	if err != nil {
		return Route{}, err
	}

	if !r.Fallback {
		if err := c.cache.Set(ctx, key, r); err != nil {
			slog.Warn("route cache write failed", "key", key, "error", err)
		}
	}
	return r, nil
}
