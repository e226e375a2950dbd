// Package cache provides the two Redis-backed caching namespaces shared by
// the retrieval and indexing layers: per-query answer caching and
// per-collection ingestion memoization.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
)

// Cache wraps a redis.Client with the two namespaces ctxsearch needs. When
// the backend is unreachable at construction time it degrades to disabled:
// every Get is a miss and every Put is a no-op, logged once.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool

	degradeOnce sync.Once
	logger      *logging.Logger
}

// New builds a Cache from cfg. If cfg.RedisEnabled is false, or the ping at
// construction time fails, the cache is built in the disabled state rather
// than returning an error — a cache outage must never block ingestion or
// retrieval.
func New(cfg *config.Config) (*Cache, error) {
	c := &Cache{
		ttl:    time.Duration(cfg.CacheTTLS) * time.Second,
		logger: logging.NewNop(),
	}

	if !cfg.RedisEnabled {
		return c, nil
	}

	c.client = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.degrade(ctx, err)
		return c, nil
	}

	c.enabled = true
	return c, nil
}

// SetLogger attaches a logger used for the one-time disabled-backend warning.
func (c *Cache) SetLogger(l *logging.Logger) { c.logger = l }

func (c *Cache) degrade(ctx context.Context, cause error) {
	c.degradeOnce.Do(func() {
		c.enabled = false
		c.logger.Warn(ctx, "cache backend unreachable, disabling cache", zap.Error(cause))
	})
}

// queryKey computes md5(query|limit|collection), the literal hash form the
// query cache is keyed by.
func queryKey(query string, limit int, collection string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d|%s", query, limit, collection)))
	return "ctxsearch:query:" + hex.EncodeToString(sum[:])
}

// GetQuery returns the cached value for (query, limit, collection), and
// whether it was present. A disabled cache always misses.
func (c *Cache) GetQuery(ctx context.Context, query string, limit int, collection string) (json.RawMessage, bool) {
	if !c.enabled {
		return nil, false
	}
	val, err := c.client.Get(ctx, queryKey(query, limit, collection)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.degrade(ctx, err)
		}
		return nil, false
	}
	return json.RawMessage(val), true
}

// PutQuery stores value under (query, limit, collection) with the
// configured TTL, and reports whether the write succeeded. A disabled cache
// always no-ops and returns false.
func (c *Cache) PutQuery(ctx context.Context, query string, limit int, collection string, value interface{}) bool {
	if !c.enabled {
		return false
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false
	}
	if err := c.client.Set(ctx, queryKey(query, limit, collection), data, c.ttl).Err(); err != nil {
		c.degrade(ctx, err)
		return false
	}
	return true
}

// DeleteQuery removes a single cached answer.
func (c *Cache) DeleteQuery(ctx context.Context, query string, limit int, collection string) error {
	if !c.enabled {
		return nil
	}
	if err := c.client.Del(ctx, queryKey(query, limit, collection)).Err(); err != nil {
		c.degrade(ctx, err)
		return err
	}
	return nil
}

// Close releases the underlying Redis connection, if one was opened.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Enabled reports whether the backend is reachable and serving requests.
func (c *Cache) Enabled() bool { return c.enabled }
