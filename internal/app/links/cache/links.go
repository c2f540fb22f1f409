package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"linkapi.local/internal/platform/metrics"
)

// NotFoundSentinel is the negative-cache marker. An explicit sentinel
// keeps "miss" and "cached absence" distinguishable; never use "" for
// that.
const NotFoundSentinel = "__nil__"

const keyPrefix = "link:"

// LinkCache is the two-level resolve cache: ristretto in-process (L1)
// backed by Redis (L2). Values are opaque payload strings (the repo
// stores the marshaled link) plus the negative sentinel.
type LinkCache struct {
	client   *redis.Client
	local    *LocalCache
	ttl      time.Duration
	emptyTTL time.Duration
}

func NewLinkCache(client *redis.Client, local *LocalCache) *LinkCache {
	return &LinkCache{
		client:   client,
		local:    local,
		ttl:      time.Hour,
		emptyTTL: 30 * time.Second,
	}
}

// Get returns the cached payload for a short name, the sentinel for a
// cached absence, or "" on a miss. An L2 hit is backfilled into L1.
func (c *LinkCache) Get(ctx context.Context, shortName string) (string, error) {
	if c.local != nil {
		if payload, ok := c.local.Get(shortName); ok {
			if payload == NotFoundSentinel {
				metrics.CacheOperations.WithLabelValues("l1", "hit_negative").Inc()
			} else {
				metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			}
			return payload, nil
		}
	}

	res, err := c.client.Get(ctx, keyPrefix+shortName).Result()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if res == NotFoundSentinel {
		metrics.CacheOperations.WithLabelValues("l2", "hit_negative").Inc()
	} else {
		metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()
	}

	if c.local != nil {
		if res == NotFoundSentinel {
			c.local.SetNotFound(shortName)
		} else {
			c.local.Set(shortName, res)
		}
	}
	return res, nil
}

func (c *LinkCache) Set(ctx context.Context, shortName, payload string) error {
	if c.local != nil {
		c.local.Set(shortName, payload)
	}
	return c.client.Set(ctx, keyPrefix+shortName, payload, c.ttl).Err()
}

// SetNotFound records a short name as absent so repeated lookups for
// missing tokens do not reach the database.
func (c *LinkCache) SetNotFound(ctx context.Context, shortName string) error {
	if c.local != nil {
		c.local.SetNotFound(shortName)
	}
	return c.client.Set(ctx, keyPrefix+shortName, NotFoundSentinel, c.emptyTTL).Err()
}

func (c *LinkCache) Delete(ctx context.Context, shortName string) error {
	if c.local != nil {
		c.local.Del(shortName)
	}
	return c.client.Del(ctx, keyPrefix+shortName).Err()
}

func (c *LinkCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("local link cache closed")
	}
}
