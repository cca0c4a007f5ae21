package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/resilience"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(clk *clock, opts ...Option) *Cache {
	base := []Option{WithClock(clk.now), WithRetry(resilience.NoRetry())}
	return New(append(base, opts...)...)
}

func TestFetchCachesUntilStale(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	c := newTestCache(clk)
	var calls int
	fn := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := Fetch(context.Background(), c, "companies", fn)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clk.advance(29 * time.Second)
	v, _ = Fetch(context.Background(), c, "companies", fn)
	assert.Equal(t, 1, v)

	clk.advance(time.Second)
	v, _ = Fetch(context.Background(), c, "companies", fn)
	assert.Equal(t, 2, v)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := newTestCache(&clock{})
	boom := errors.New("boom")
	var calls int
	fn := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}

	_, err := Fetch(context.Background(), c, "k", fn)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Fetch(context.Background(), c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestConcurrentCallersShareOneFetch(t *testing.T) {
	c := newTestCache(&clock{})
	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, "dashboard", fn)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	c := newTestCache(&clock{})
	ctx := context.Background()
	one := func(context.Context) (int, error) { return 1, nil }

	_, _ = Fetch(ctx, c, Key("companies:list", map[string]string{"page": "0"}), one)
	_, _ = Fetch(ctx, c, "companies:detail/c1", one)
	_, _ = Fetch(ctx, c, "statements:list", one)
	require.Equal(t, 3, c.Len())

	assert.Equal(t, 2, c.Invalidate("companies:"))
	assert.Equal(t, 1, c.Len())

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestInvalidateDuringFetchDiscardsResult(t *testing.T) {
	c := newTestCache(&clock{})
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := Fetch(context.Background(), c, "alerts", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()
	<-started
	c.Invalidate("alerts")
	close(release)
	assert.Equal(t, 1, <-done)
	assert.Equal(t, 0, c.Len())

	v, err := Fetch(context.Background(), c, "alerts", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	c := New(WithRetry(resilience.Policy{Retries: 3, InitialBackoff: time.Millisecond}))
	var calls int
	v, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, resilience.Transient(errors.New("502"), 502)
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 3, calls)
}

func TestCallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	c := newTestCache(&clock{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (int, error) {
		<-release
		return 5, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, "k", fn)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	v, err := Fetch(context.Background(), c, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("statements:list", map[string]string{"status": "PENDING", "page": "1", "companyId": ""})
	b := Key("statements:list", map[string]string{"page": "1", "status": "PENDING"})
	assert.Equal(t, a, b)
	assert.Equal(t, "statements:list?page=1&status=PENDING", a)
	assert.Equal(t, "companies:list", Key("companies:list", nil))
}
