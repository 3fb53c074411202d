package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
)

// SearchCache stores search summaries keyed by model+query so a resubmitted
// query does not pay for the same provider calls twice. Strictly
// cache-aside: any redis problem is logged and the search proceeds as a
// miss.
type SearchCache struct {
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewSearchCache(client RedisClient, ttl time.Duration, log *zerolog.Logger) *SearchCache {
	return &SearchCache{client: client, ttl: ttl, log: log}
}

func (c *SearchCache) Get(ctx context.Context, model, query string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKey(model, query))
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

func (c *SearchCache) Set(ctx context.Context, model, query, summary string) {
	if err := c.client.Set(ctx, cacheKey(model, query), summary, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("search cache write failed")
	}
}

func cacheKey(model, query string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + query))
	return "search_summary:" + hex.EncodeToString(sum[:16])
}
