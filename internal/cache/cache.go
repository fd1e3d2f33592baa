// Package cache keeps pricing read models in named TTL caches backed by
// Redis or an in-process store. Cache failures never fail a request: the
// loader result is served instead.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Aidin1998/pricecatalog/internal/config"
	"github.com/Aidin1998/pricecatalog/pkg/metrics"
)

// Cache names.
const (
	CategoryPricing  = "categoryPricing"
	PriceSummary     = "priceSummary"
	BrandLowestPrice = "brandLowestPrice"
)

// ErrNilValue is returned by GetOrLoad when the loader produced nothing to cache.
var ErrNilValue = errors.New("cache: loader returned nil")

// Store is a byte-oriented TTL key value store.
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Close() error
}

// Loader produces the value for a missed key.
type Loader func(ctx context.Context) (any, error)

// Manager resolves named caches on top of a Store.
type Manager struct {
	store      Store
	ttls       map[string]time.Duration
	defaultTTL time.Duration
	group      singleflight.Group
	logger     *zap.Logger

	// generation changes on every InvalidateAll. Loads started under an
	// older generation are not stored and are not joined by new callers.
	generation atomic.Uint64
	genMu      sync.RWMutex
}

// NewManager creates a cache manager using the per-cache TTLs of cfg.
func NewManager(store Store, cfg config.CacheConfig, logger *zap.Logger) *Manager {
	return &Manager{
		store: store,
		ttls: map[string]time.Duration{
			CategoryPricing:  cfg.CategoryPricingTTL,
			PriceSummary:     cfg.PriceSummaryTTL,
			BrandLowestPrice: cfg.BrandLowestPriceTTL,
		},
		defaultTTL: cfg.DefaultTTL,
		logger:     logger.With(zap.String("component", "cache"), zap.String("backend", store.Name())),
	}
}

// TTL returns the time to live of the named cache.
func (m *Manager) TTL(cache string) time.Duration {
	if ttl, ok := m.ttls[cache]; ok && ttl > 0 {
		return ttl
	}
	return m.defaultTTL
}

// Backend names the store in use.
func (m *Manager) Backend() string {
	return m.store.Name()
}

// GetOrLoad decodes the cached value of cache/key into dst. On a miss,
// load runs once per key no matter how many callers wait on it, and its
// result is stored and decoded into dst. Loader errors are returned as is.
func (m *Manager) GetOrLoad(ctx context.Context, cache, key string, dst any, load Loader) error {
	fullKey := cache + ":" + key

	data, found, err := m.store.Get(ctx, fullKey)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues(cache, "error").Inc()
		m.logger.Warn("cache read failed, loading from source",
			zap.String("cache", cache), zap.String("key", key), zap.Error(err))
	case found:
		decodeErr := json.Unmarshal(data, dst)
		if decodeErr == nil {
			metrics.CacheRequests.WithLabelValues(cache, "hit").Inc()
			return nil
		}
		metrics.CacheRequests.WithLabelValues(cache, "error").Inc()
		m.logger.Warn("cached value unreadable, reloading",
			zap.String("cache", cache), zap.String("key", key), zap.Error(decodeErr))
	default:
		metrics.CacheRequests.WithLabelValues(cache, "miss").Inc()
	}

	gen := m.generation.Load()
	flightKey := fullKey + "@" + strconv.FormatUint(gen, 10)

	// the shared load outlives any single caller; each caller stops
	// waiting when its own context ends
	loadCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(flightKey, func() (any, error) {
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, ErrNilValue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		m.storeLoaded(loadCtx, cache, key, fullKey, encoded, gen)
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dst)
	}
}

// storeLoaded writes a loaded value unless the caches were invalidated since
// the load started.
func (m *Manager) storeLoaded(ctx context.Context, cache, key, fullKey string, encoded []byte, gen uint64) {
	m.genMu.RLock()
	defer m.genMu.RUnlock()
	if m.generation.Load() != gen {
		m.logger.Debug("discarding value loaded before invalidation",
			zap.String("cache", cache), zap.String("key", key))
		return
	}
	if err := m.store.Set(ctx, fullKey, encoded, m.TTL(cache)); err != nil {
		m.logger.Warn("cache write failed",
			zap.String("cache", cache), zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll drops every cached entry. Failures are logged only.
func (m *Manager) InvalidateAll(ctx context.Context) {
	m.genMu.Lock()
	m.generation.Add(1)
	m.genMu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("cache invalidation failed", zap.Error(err))
		return
	}
	m.logger.Debug("caches invalidated")
}

// Close releases the store.
func (m *Manager) Close() error {
	return m.store.Close()
}
