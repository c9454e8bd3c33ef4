package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wyejay/MedPeer/pkg/config"
	"github.com/wyejay/MedPeer/pkg/logging"
)

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)

// unreadCountTTL bounds staleness of the polled unread counters
const unreadCountTTL = 30 * time.Second

// Cache wraps Redis client
type Cache struct {
	client *redis.Client
	ctx    context.Context
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// namespaceKey prefixes keys so a shared Redis can host other services
func (c *Cache) namespaceKey(key string) string {
	return "medpeer:" + key
}

// HashKey builds a stable cache key from its parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// Get retrieves a value from cache
func (c *Cache) Get(key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	return c.client.Get(c.ctx, c.namespaceKey(key)).Result()
}

// Set sets a value in cache with TTL
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(c.ctx, c.namespaceKey(key), value, ttl).Err()
}

// Delete removes a key from cache
func (c *Cache) Delete(key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(c.ctx, c.namespaceKey(key)).Err()
}

// Exists checks if a key exists
func (c *Cache) Exists(key string) (bool, error) {
	if c == nil || c.client == nil {
		return false, ErrCacheDisabled
	}
	count, err := c.client.Exists(c.ctx, c.namespaceKey(key)).Result()
	return count > 0, err
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

// unreadKey is the counter key for a user's unread notifications or messages
func unreadKey(kind string, userID int64) string {
	return fmt.Sprintf("unread:%s:%d", kind, userID)
}

// GetUnreadCount reads a cached unread counter. ok is false on a miss or
// when the cache is disabled; callers then fall back to the store.
func (c *Cache) GetUnreadCount(kind string, userID int64) (count int64, ok bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.Get(unreadKey(kind, userID))
	if err != nil {
		return 0, false
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches an unread counter with a short TTL
func (c *Cache) SetUnreadCount(kind string, userID int64, count int64) {
	if c == nil || c.client == nil {
		return
	}
	// best effort; the store remains authoritative
	_ = c.Set(unreadKey(kind, userID), strconv.FormatInt(count, 10), unreadCountTTL)
}

// InvalidateUnreadCount drops a cached unread counter after a write
func (c *Cache) InvalidateUnreadCount(kind string, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.Delete(unreadKey(kind, userID))
}
