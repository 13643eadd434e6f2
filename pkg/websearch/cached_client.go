package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedClient wraps a Client with a Redis result cache. Web results for a
// query change slowly; a short TTL saves a network round trip on repeated
// questions without serving stale context for long.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

var _ Client = &CachedClient{}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClient{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (c *CachedClient) Search(ctx context.Context, query string, maxResults int) ([]Snippet, error) {
	key := fmt.Sprintf("websearch:%d:%s", maxResults, query)

	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var cached []Snippet
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			// Corrupt entry, fall through to a fresh search
		}
	}

	results, err := c.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(results); err == nil {
			// Cache write failure is not worth failing the search over
			_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
		}
	}

	return results, nil
}
