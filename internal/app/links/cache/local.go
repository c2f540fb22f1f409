package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache is the in-process L1 in front of Redis. Entries carry a
// short TTL so multiple instances converge quickly after a write.
type LocalCache struct {
	cache    *ristretto.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewLocalCache creates the L1 cache. maxItems bounds the entry count,
// maxCost the memory budget in bytes.
func NewLocalCache(maxItems int64, maxCost int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache:    c,
		ttl:      5 * time.Minute,
		emptyTTL: 10 * time.Second,
	}, nil
}

func (l *LocalCache) Get(shortName string) (string, bool) {
	if v, ok := l.cache.Get(shortName); ok {
		return v.(string), true
	}
	return "", false
}

func (l *LocalCache) Set(shortName, payload string) {
	l.cache.SetWithTTL(shortName, payload, 1, l.ttl)
}

func (l *LocalCache) SetNotFound(shortName string) {
	l.cache.SetWithTTL(shortName, NotFoundSentinel, 1, l.emptyTTL)
}

func (l *LocalCache) Del(shortName string) {
	l.cache.Del(shortName)
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
