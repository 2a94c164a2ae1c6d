package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a written entry stays readable
const DefaultTTL = 5 * time.Minute

// Cache is a lookaside cache. Entries are written after successful inserts and
// read opportunistically; a miss never populates it.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Has(key string) bool
}

// Recorder receives hit/miss notifications
type Recorder interface {
	CacheHit()
	CacheMiss()
}

type ttlCache struct {
	store *gocache.Cache
}

// NewTTL returns a process-local cache whose entries expire ttl after they were set.
// Expired entries are purged by the library's janitor.
func NewTTL(ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ttlCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *ttlCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *ttlCache) Set(key string, value any) {
	c.store.SetDefault(key, value)
}

func (c *ttlCache) Has(key string) bool {
	_, ok := c.store.Get(key)
	return ok
}

type noopCache struct{}

// NewNoop returns a cache that stores nothing
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Get(string) (any, bool) { return nil, false }
func (noopCache) Set(string, any)        {}
func (noopCache) Has(string) bool        { return false }

type instrumented struct {
	Cache
	recorder Recorder
}

// Instrumented reports every Get to r
func Instrumented(c Cache, r Recorder) Cache {
	if r == nil {
		return c
	}
	return &instrumented{Cache: c, recorder: r}
}

func (c *instrumented) Get(key string) (any, bool) {
	v, ok := c.Cache.Get(key)
	if ok {
		c.recorder.CacheHit()
	} else {
		c.recorder.CacheMiss()
	}
	return v, ok
}

// MeasurementKey identifies a measurement by city name and timestamp.
// The name is lowercased to match the case-insensitive city lookup.
func MeasurementKey(city string, ts time.Time) string {
	return strings.ToLower(city) + "@" + ts.UTC().Format(time.RFC3339Nano)
}

func StatisticKey(id uint) string {
	return fmt.Sprintf("statistic:%d", id)
}
