// Package cache is the Redis-backed query-result cache for the searcher.
// Identical concurrent queries are collapsed through singleflight, and the
// whole cache is invalidated whenever a new index snapshot is published.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ahmeedHassan1/ir-iss-project/internal/search/executor"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/config"
	pkgredis "github.com/ahmeedHassan1/ir-iss-project/pkg/redis"
)

const keyPrefix = "search:"

// QueryCache caches ranked search results in Redis.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache backed by the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns a cached result for the query, if present. Cache failures
// count as misses; the query is simply recomputed.
func (c *QueryCache) Get(ctx context.Context, q *parser.Query, limit int) (*executor.SearchResult, bool) {
	key := c.buildKey(q, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

// Set stores a result under the query's cache key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, q *parser.Query, limit int, result *executor.SearchResult) {
	key := c.buildKey(q, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it,
// collapsing concurrent identical queries into one computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q *parser.Query,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, q, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(q, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, q, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every cached search result. Called when a new snapshot
// is swapped in, since all prior rankings are stale.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the process-local hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey derives a stable cache key from the parsed query. Include
// terms are sorted so term order within a query does not fragment the
// cache; the kind keeps free and conjunctive forms of the same terms
// apart.
func (c *QueryCache) buildKey(q *parser.Query, limit int) string {
	include := append([]string(nil), q.Include...)
	exclude := append([]string(nil), q.Exclude...)
	sort.Strings(include)
	sort.Strings(exclude)

	raw := fmt.Sprintf("%s|%s|%s|limit=%d",
		q.Kind.String(),
		strings.Join(include, ","),
		strings.Join(exclude, ","),
		limit,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
