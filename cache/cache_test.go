package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) CacheHit()  { r.hits++ }
func (r *countingRecorder) CacheMiss() { r.misses++ }

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTL(time.Minute)

	assert.False(t, c.Has("k"))
	c.Set("k", 42)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, c.Has("k"))
}

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTL(20 * time.Millisecond)
	c.Set("k", "v")

	assert.Eventually(t, func() bool {
		return !c.Has("k")
	}, time.Second, 10*time.Millisecond)
}

func TestNoopCache(t *testing.T) {
	c := NewNoop()
	c.Set("k", 1)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Has("k"))
}

func TestInstrumentedCountsLookups(t *testing.T) {
	r := &countingRecorder{}
	c := Instrumented(NewTTL(time.Minute), r)

	c.Get("missing")
	c.Set("present", true)
	c.Get("present")
	c.Get("present")

	assert.Equal(t, 2, r.hits)
	assert.Equal(t, 1, r.misses)
}

func TestKeys(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("EET", 2*3600))

	assert.Equal(t, "kharkiv@2024-03-01T10:30:00Z", MeasurementKey("Kharkiv", ts))
	assert.Equal(t, MeasurementKey("KHARKIV", ts.UTC()), MeasurementKey("kharkiv", ts))
	assert.Equal(t, "statistic:7", StatisticKey(7))
}
