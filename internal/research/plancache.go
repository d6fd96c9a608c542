package research

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const planCacheKeyPrefix = "cybersyn:plan:"

// redisPlanCache caches search plans in redis. Plans are the most
// expensive per-turn LLM use and are pure functions of the query, so
// repeated queries across turns skip the planning call entirely.
type redisPlanCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisPlanCache connects a plan cache to the given redis address.
func NewRedisPlanCache(addr, password string, db int, ttl time.Duration) PlanCache {
	return &redisPlanCache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
		logger: log.New(log.Writer(), "[PLANCACHE] ", log.LstdFlags),
	}
}

func planCacheKey(query string) string {
	return planCacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

func (c *redisPlanCache) Get(ctx context.Context, query string) ([]string, bool) {
	raw, err := c.rdb.Get(ctx, planCacheKey(query)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("get failed: %v", err)
		}
		return nil, false
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		c.logger.Printf("corrupt cache entry for %q: %v", query, err)
		return nil, false
	}
	return terms, true
}

func (c *redisPlanCache) Put(ctx context.Context, query string, terms []string) {
	raw, err := json.Marshal(terms)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, planCacheKey(query), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("put failed: %v", err)
	}
}
