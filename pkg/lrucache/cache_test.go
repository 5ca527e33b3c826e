package lrucache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets the tests move time deterministically instead of sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, maxSize int, opts ...Option) (*Cache[string, int], *fakeClock) {
	t.Helper()
	c, err := New[string, int](maxSize, opts...)
	require.NoError(t, err)
	clock := newFakeClock()
	c.now = clock.Now
	return c, clock
}

func TestNewValidation(t *testing.T) {
	_, err := New[string, int](0)
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	_, err = New[string, int](-3)
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	_, err = New[string, int](5, WithTTL(0))
	assert.ErrorIs(t, err, ErrInvalidTTL)

	_, err = New[string, int](5, WithTTL(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidTTL)

	c, err := New[string, int](1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.MaxSize())
	assert.Equal(t, time.Duration(0), c.TTL())

	c, err = New[string, int](5, WithTTL(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.TTL())
}

func TestMustNewPanicsOnBadConfig(t *testing.T) {
	assert.Panics(t, func() {
		MustNew[string, int](0)
	})
	assert.NotPanics(t, func() {
		MustNew[string, int](10)
	})
}

func TestGetSetBasics(t *testing.T) {
	c, _ := newTestCache(t, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 99)
	v, ok = c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 99, v)
	assert.Equal(t, 1, c.Len())
}

// A read must protect an entry from eviction: set(a); set(b); get(a); set(c)
// evicts b, leaving exactly {a, c}.
func TestEvictionRespectsReads(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.Equal(t, 2, c.Len())
}

func TestEvictionKeepsMostRecentKeys(t *testing.T) {
	const maxSize = 3
	c, _ := newTestCache(t, maxSize)

	for i := 0; i < maxSize+1; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, maxSize, c.Len())
	assert.False(t, c.Has("k0"), "the oldest key should have been evicted")
	for i := 1; i <= maxSize; i++ {
		assert.True(t, c.Has(fmt.Sprintf("k%d", i)))
	}
}

// Rewriting an existing key refreshes its recency, so the rewrite must save
// it from the next eviction.
func TestSetExistingKeyRefreshesRecency(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestSetExistingKeyNeverEvicts(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("b", 20)

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("a"))
	assert.True(t, c.Has("b"))
}

// Has must not count as a use: probing a key leaves it first in line for
// eviction.
func TestHasDoesNotRefreshRecency(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	require.True(t, c.Has("a"))

	c.Set("c", 3)

	assert.False(t, c.Has("a"), "Has should not have protected a")
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestCapacityOneReplacement(t *testing.T) {
	c, _ := newTestCache(t, 1)

	c.Set("a", 1)
	c.Set("b", 2)

	assert.False(t, c.Has("a"))
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestTTLBoundary(t *testing.T) {
	const ttl = time.Minute
	c, clock := newTestCache(t, 10, WithTTL(ttl))

	c.Set("a", 1)

	// At exactly ttl the entry is still live.
	clock.Advance(ttl)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// One tick past ttl it is gone, and the touch removed it.
	clock.Advance(time.Nanosecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLRewriteResetsExpiry(t *testing.T) {
	const ttl = time.Minute
	c, clock := newTestCache(t, 10, WithTTL(ttl))

	c.Set("a", 1)
	clock.Advance(40 * time.Second)
	c.Set("a", 2)

	// 40s + 30s past the original write, but only 30s past the rewrite.
	clock.Advance(30 * time.Second)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// Reads refresh recency, never the expiry clock: a hot key still dies on
// schedule.
func TestTTLReadsDoNotExtendLife(t *testing.T) {
	const ttl = time.Minute
	c, clock := newTestCache(t, 10, WithTTL(ttl))

	c.Set("a", 1)
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		_, ok := c.Get("a")
		require.True(t, ok)
	}

	clock.Advance(10*time.Second + time.Nanosecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestHasLazyDeletesExpired(t *testing.T) {
	c, clock := newTestCache(t, 10, WithTTL(time.Minute))

	c.Set("a", 1)
	clock.Advance(time.Minute + time.Second)

	assert.False(t, c.Has("a"))
	assert.Equal(t, 0, c.Len(), "Has should have lazily deleted the entry")
}

func TestEnumerationSkipsAndDeletesExpired(t *testing.T) {
	c, clock := newTestCache(t, 10, WithTTL(time.Minute))

	c.Set("old", 1)
	clock.Advance(45 * time.Second)
	c.Set("fresh", 2)
	clock.Advance(30 * time.Second) // old is now 75s, fresh 30s

	keys := c.Keys()
	assert.Equal(t, []string{"fresh"}, keys)
	assert.Equal(t, 1, c.Len(), "the walk should have dropped the expired entry")

	assert.Equal(t, []int{2}, c.Values())

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Key)
	assert.Equal(t, 2, entries[0].Value)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.False(t, entries[0].AccessedAt.IsZero())
}

func TestEnumerationOrderIsMostRecentFirst(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	_, _ = c.Get("a")

	assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
	assert.Equal(t, []int{1, 3, 2}, c.Values())
}

func TestForEachVisitsLiveEntries(t *testing.T) {
	c, clock := newTestCache(t, 10, WithTTL(time.Minute))

	c.Set("dead", 1)
	clock.Advance(2 * time.Minute)
	c.Set("x", 10)
	c.Set("y", 20)

	seen := map[string]int{}
	c.ForEach(func(key string, value int) {
		seen[key] = value
	})

	assert.Equal(t, map[string]int{"x": 10, "y": 20}, seen)
	assert.Equal(t, 2, c.Len())
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", 1)
	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	assert.False(t, c.Has("a"))
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())

	// The cache must stay usable after Clear.
	c.Set("c", 3)
	assert.True(t, c.Has("c"))
}

func TestFlushRemovesOnlyExpired(t *testing.T) {
	c, clock := newTestCache(t, 10, WithTTL(time.Minute))

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(90 * time.Second)
	c.Set("c", 3)

	removed := c.Flush()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("c"))
}

func TestNoTTLNeverExpires(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("a", 1)
	clock.Advance(1000 * time.Hour)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, c.Flush())
}

func TestConcurrentAccessKeepsBound(t *testing.T) {
	const maxSize = 32
	c, err := New[int, int](maxSize)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := (seed*31 + i) % 100
				switch i % 4 {
				case 0:
					c.Set(k, i)
				case 1:
					c.Get(k)
				case 2:
					c.Has(k)
				case 3:
					c.Delete(k)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), maxSize)
}
