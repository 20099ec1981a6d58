// Package cache keeps short-lived JSON snapshots in Redis. Each namespace has
// a version counter; bumping it invalidates every key written under the old
// version without scanning.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 5 * time.Minute

	NamespaceOrders  = "orders"
	NamespaceCatalog = "catalog"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient opens a client and checks it answers. A nil client with a nil
// error means caching is disabled.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Versioned is a namespaced cache. All methods are no-ops on a nil client.
type Versioned struct {
	redis     *redis.Client
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewVersioned(rdb *redis.Client, namespace string, ttl time.Duration, logger *zap.Logger) *Versioned {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Versioned{redis: rdb, namespace: namespace, ttl: ttl, logger: logger}
}

func (c *Versioned) versionKey() string {
	return c.namespace + ":version"
}

func (c *Versioned) dataKey(version int64, key string) string {
	return fmt.Sprintf("%s:v:%d:%s", c.namespace, version, key)
}

// Get decodes the cached value for key into dest and reports a hit. It also
// returns the namespace version it read, which a caller filling the cache
// after a miss passes back to SetAsync. Version 0 means the cache is
// unavailable.
func (c *Versioned) Get(ctx context.Context, key string, dest interface{}) (bool, int64) {
	if c == nil || c.redis == nil {
		return false, 0
	}
	version, err := c.getVersion(ctx)
	if err != nil || version == 0 {
		return false, 0
	}

	raw, err := c.redis.Get(ctx, c.dataKey(version, key)).Bytes()
	if err != nil {
		return false, version
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false, version
	}
	return true, version
}

// SetAsync stores value under key for the given version in the background.
// A value loaded before an Invalidate lands under the retired version and is
// never read.
func (c *Versioned) SetAsync(version int64, key string, value interface{}) {
	if c == nil || c.redis == nil || version <= 0 {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.set(bgCtx, version, key, value)
	}()
}

func (c *Versioned) set(ctx context.Context, version int64, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, c.dataKey(version, key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache value", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate bumps the namespace version.
func (c *Versioned) Invalidate(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	newVersion, err := c.redis.Incr(ctx, c.versionKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate %s cache: %w", c.namespace, err)
	}
	c.logger.Debug("Cache invalidated", zap.String("namespace", c.namespace), zap.Int64("new_version", newVersion))
	return nil
}

func (c *Versioned) getVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ver, err := c.redis.Get(ctx, c.versionKey()).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if errors.Is(err, redis.Nil) {
			if err := c.redis.SetNX(ctx, c.versionKey(), 1, 0).Err(); err == nil {
				continue
			}
		}
		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("cache version unavailable")
	}
	return 0, lastErr
}
