package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	_, ok, err := c.Get(ctx, "crypto-symbols")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "crypto-symbols", `[{"name":"Bitcoin","symbol":"BTC"}]`, time.Hour))

	v, ok, err := c.Get(ctx, "crypto-symbols")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"Bitcoin","symbol":"BTC"}]`, v)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCacheWithClock(clk)

	require.NoError(t, c.Set(ctx, "exchange-rates", "v1", time.Hour))

	clk.Advance(59 * time.Minute)
	_, ok, _ := c.Get(ctx, "exchange-rates")
	assert.True(t, ok, "still fresh before ttl")

	clk.Advance(time.Minute)
	_, ok, _ = c.Get(ctx, "exchange-rates")
	assert.False(t, ok, "expired exactly at ttl")

	c.mu.RLock()
	_, stored := c.items["exchange-rates"]
	c.mu.RUnlock()
	assert.False(t, stored, "expired entry evicted on read")
}

func TestCache_SetReplacesWholeValue(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCacheWithClock(clk)

	require.NoError(t, c.Set(ctx, "k", "old", time.Minute))
	clk.Advance(50 * time.Second)
	require.NoError(t, c.Set(ctx, "k", "new", time.Minute))
	clk.Advance(50 * time.Second)

	v, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok, "ttl restarts on replace")
	assert.Equal(t, "new", v)
}

func TestCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCacheWithClock(clk)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	clk.Advance(365 * 24 * time.Hour)

	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestCache_Prune(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCacheWithClock(clk)

	require.NoError(t, c.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, c.Set(ctx, "long", "v", time.Hour))
	clk.Advance(2 * time.Minute)

	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestCache_ConcurrentReadersSeeWholeValues(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	require.NoError(t, c.Set(ctx, "k", "v0", time.Hour))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = c.Set(ctx, "k", "v"+strconv.Itoa(w*1000+i), time.Hour)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				v, ok, err := c.Get(ctx, "k")
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, byte('v'), v[0])
			}
		}()
	}
	wg.Wait()
}
