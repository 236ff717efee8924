package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c := New[string]("test")
	c.Set("k1", "v1", time.Minute)

	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	c := New[int]("test")
	c.Set("k1", 42, 10*time.Millisecond)

	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k1")
	assert.False(t, ok, "expired entry must never be returned")

	// The expired read evicted the entry.
	assert.Equal(t, 0, c.Len())
}

func TestCache_DefaultTTL(t *testing.T) {
	t.Parallel()

	c := New("test", WithDefaultTTL[string](10*time.Millisecond))
	c.Set("k1", "v1", 0)

	_, ok := c.Get("k1")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k1")
	assert.False(t, ok)
}

func TestCache_NoExpiry(t *testing.T) {
	t.Parallel()

	c := New[string]("test")
	c.Set("k1", "v1", -1)

	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k1")
	assert.True(t, ok)
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	c := New[string]("test")
	c.Set("k1", "v1", time.Minute)
	c.Delete("k1")

	_, ok := c.Get("k1")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := New[string]("test")
	c.Set("k1", "v1", time.Minute)
	c.Set("k2", "v2", time.Minute)
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Stats(t *testing.T) {
	t.Parallel()

	c := New[string]("test")
	c.Set("k1", "v1", time.Minute)

	c.Get("k1")
	c.Get("k1")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := New[int]("test")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			c.Set(key, i, time.Minute)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
