package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/internal/config"
	"github.com/Aidin1998/pricecatalog/internal/database"
)

// New builds the cache manager for cfg. Redis is used when enabled and
// reachable; otherwise the local store is used and a warning logged.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			client.AddHook(NewBreakerHook(logger))
			logger.Info("using redis cache", zap.String("address", cfg.Redis.Address))
			return NewManager(NewRedisStore(client), cfg.Cache, logger), nil
		}
		_ = client.Close()
		logger.Warn("redis unavailable, falling back to local cache",
			zap.String("address", cfg.Redis.Address), zap.Error(err))
	}

	local, err := NewLocalStore(cfg.Cache.LocalMaxEntries)
	if err != nil {
		return nil, err
	}
	return NewManager(local, cfg.Cache, logger), nil
}
