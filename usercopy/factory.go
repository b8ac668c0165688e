package usercopy

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
)

// Open creates the store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	prefix := cfg.Store.KeyPrefix
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return NewMemoryStore(prefix), nil
	case config.StoreRedis:
		return ConnectRedis(ctx, cfg.Store.RedisURL, prefix)
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.Store.SQLitePath, prefix)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// NewFromConfig opens the configured store and closes it when the app stops.
func NewFromConfig(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (Store, error) {
	store, err := Open(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("user copy store opened", zap.String("backend", store.Backend()))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}
