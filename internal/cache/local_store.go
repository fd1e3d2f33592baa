package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalStore keeps entries in process memory.
type LocalStore struct {
	cache *ristretto.Cache
}

// NewLocalStore creates an in-process store holding about maxEntries values.
func NewLocalStore(maxEntries int64) (*LocalStore, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &LocalStore{cache: c}, nil
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

func (s *LocalStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// every entry costs 1 so MaxCost is an entry count
	s.cache.SetWithTTL(key, value, 1, ttl)
	s.cache.Wait()
	return nil
}

// Wait blocks until buffered writes are visible to Get.
func (s *LocalStore) Wait() {
	s.cache.Wait()
}

func (s *LocalStore) Clear(context.Context) error {
	s.cache.Clear()
	return nil
}

func (s *LocalStore) Close() error {
	s.cache.Close()
	return nil
}
