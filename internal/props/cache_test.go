package props

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_HitReturnsClone(t *testing.T) {
	c := NewCache(10, time.Minute)

	p := New()
	p.Set("key", "original")
	c.Put("proj/v1/src/job.properties", p)

	// Mutating the value we put in must not affect the cache.
	p.Set("key", "mutated-after-put")

	first, ok := c.Get("proj/v1/src/job.properties")
	require.True(t, ok)
	assert.Equal(t, "original", first.GetDefault("key", ""))

	// Mutating one caller's copy must not leak into another's.
	first.Set("key", "mutated-by-caller")

	second, ok := c.Get("proj/v1/src/job.properties")
	require.True(t, ok)
	assert.Equal(t, "original", second.GetDefault("key", ""))
}

func TestCache_Miss(t *testing.T) {
	c := NewCache(10, time.Minute)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_EvictsLRUOverCapacity(t *testing.T) {
	c := NewCache(2, time.Minute)

	a, b, d := New(), New(), New()
	c.Put("a", a)
	c.Put("b", b)

	// Touch "a" so "b" is the least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", d)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCache_IdleExpiry(t *testing.T) {
	c := NewCache(10, 20*time.Millisecond)
	c.Put("key", New())

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%100)
				if p, ok := c.Get(key); ok {
					p.Set("scratch", "x")
					continue
				}
				p := New()
				p.Set("owner", fmt.Sprintf("worker-%d", n))
				c.Put(key, p)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewCache_Defaults(t *testing.T) {
	c := NewCache(0, 0)
	c.Put("key", New())
	_, ok := c.Get("key")
	assert.True(t, ok)
}
