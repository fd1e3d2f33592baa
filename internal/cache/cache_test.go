package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Aidin1998/pricecatalog/internal/config"
)

type summary struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

func newLocalManager(t *testing.T) (*Manager, *LocalStore) {
	t.Helper()
	store, err := NewLocalStore(100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, config.Default().Cache, zaptest.NewLogger(t)), store
}

// failingStore fails every operation like an unreachable Redis.
type failingStore struct{}

func (failingStore) Name() string { return "failing" }
func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Clear(context.Context) error { return errors.New("connection refused") }
func (failingStore) Close() error                { return nil }

func TestTTLPerCache(t *testing.T) {
	m, _ := newLocalManager(t)

	assert.Equal(t, 20*time.Second, m.TTL(CategoryPricing))
	assert.Equal(t, 30*time.Second, m.TTL(PriceSummary))
	assert.Equal(t, 60*time.Second, m.TTL(BrandLowestPrice))
	assert.Equal(t, 60*time.Second, m.TTL("somethingElse"))
}

func TestGetOrLoadCachesValue(t *testing.T) {
	m, store := newLocalManager(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (any, error) {
		calls++
		return summary{Category: "상의", Total: 10000}, nil
	}

	var first summary
	require.NoError(t, m.GetOrLoad(ctx, PriceSummary, "상의", &first, load))
	store.Wait()

	var second summary
	require.NoError(t, m.GetOrLoad(ctx, PriceSummary, "상의", &second, load))

	assert.Equal(t, summary{Category: "상의", Total: 10000}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestInvalidateAllForcesReload(t *testing.T) {
	m, store := newLocalManager(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (any, error) {
		calls++
		return summary{Total: calls}, nil
	}

	var got summary
	require.NoError(t, m.GetOrLoad(ctx, CategoryPricing, "all", &got, load))
	store.Wait()

	m.InvalidateAll(ctx)

	require.NoError(t, m.GetOrLoad(ctx, CategoryPricing, "all", &got, load))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, got.Total)
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	m, _ := newLocalManager(t)
	boom := errors.New("boom")

	var got summary
	err := m.GetOrLoad(context.Background(), PriceSummary, "x", &got, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGetOrLoadRejectsNil(t *testing.T) {
	m, _ := newLocalManager(t)

	var got summary
	err := m.GetOrLoad(context.Background(), PriceSummary, "x", &got, func(context.Context) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNilValue)
}

func TestGetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	m := NewManager(failingStore{}, config.Default().Cache, zaptest.NewLogger(t))
	ctx := context.Background()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return summary{Total: 34100}, nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]summary, callers)
	errs := make([]error, callers)
	wg.Add(callers)
	go func() {
		defer wg.Done()
		errs[0] = m.GetOrLoad(ctx, CategoryPricing, "all", &results[0], load)
	}()
	<-started
	for i := 1; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = m.GetOrLoad(ctx, CategoryPricing, "all", &results[i], load)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, 34100, results[i].Total)
	}
}

func TestGetOrLoadFailsOpen(t *testing.T) {
	m := NewManager(failingStore{}, config.Default().Cache, zaptest.NewLogger(t))

	var got summary
	err := m.GetOrLoad(context.Background(), BrandLowestPrice, "lowest", &got, func(context.Context) (any, error) {
		return summary{Category: "D", Total: 36100}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 36100, got.Total)

	m.InvalidateAll(context.Background())
}

func TestRedisStoreUnreachableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	client.AddHook(NewBreakerHook(zaptest.NewLogger(t)))
	store := NewRedisStore(client)
	t.Cleanup(func() { _ = store.Close() })
	m := NewManager(store, config.Default().Cache, zaptest.NewLogger(t))

	var got summary
	err := m.GetOrLoad(context.Background(), PriceSummary, "바지", &got, func(context.Context) (any, error) {
		return summary{Category: "바지", Total: 3000}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "바지", got.Category)
}

func TestNewFallsBackToLocal(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = "127.0.0.1:1"
	cfg.Redis.Timeout = 50 * time.Millisecond

	m, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	assert.Equal(t, "local", m.Backend())
}

func TestInvalidateAllDiscardsLoadInFlight(t *testing.T) {
	m, _ := newLocalManager(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		var got string
		done <- m.GetOrLoad(ctx, CategoryPricing, "all", &got, func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started

	// a write commits while the old load is still running
	m.InvalidateAll(ctx)

	fresh := func(context.Context) (any, error) { return "fresh", nil }

	var joined string
	require.NoError(t, m.GetOrLoad(ctx, CategoryPricing, "all", &joined, fresh))
	assert.Equal(t, "fresh", joined)

	close(release)
	require.NoError(t, <-done)

	var got string
	require.NoError(t, m.GetOrLoad(ctx, CategoryPricing, "all", &got, fresh))
	assert.Equal(t, "fresh", got)
}

func TestGetOrLoadSurvivesCancelledLeader(t *testing.T) {
	m, _ := newLocalManager(t)

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return summary{Category: "바지", Total: 3000}, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		var got summary
		leaderDone <- m.GetOrLoad(leaderCtx, PriceSummary, "바지", &got, load)
	}()
	<-started

	followerDone := make(chan error, 1)
	var follower summary
	go func() {
		followerDone <- m.GetOrLoad(context.Background(), PriceSummary, "바지", &follower, load)
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderDone, context.Canceled)

	close(release)
	require.NoError(t, <-followerDone)
	assert.Equal(t, summary{Category: "바지", Total: 3000}, follower)
}
