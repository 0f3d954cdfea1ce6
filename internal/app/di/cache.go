package di

import (
	"context"
	"fmt"

	"btc_backend/internal/feature/marketdata/usecase"
	"btc_backend/internal/platform/cache"
	"btc_backend/internal/platform/config"
	"btc_backend/internal/platform/db"
	platformhandler "btc_backend/internal/platform/http/handler"
	infraredis "btc_backend/internal/platform/redis"
)

// CacheBackend holds the selected store plus the resources it owns.
type CacheBackend struct {
	Store  usecase.CacheStore // nil when caching is disabled
	Checks []platformhandler.Check
	close  []func() error
}

// Close releases connections opened for the store.
func (b *CacheBackend) Close() error {
	var first error
	for _, fn := range b.close {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewCacheBackend builds the store named by cfg.Cache.Backend.
func NewCacheBackend(ctx context.Context, cfg *config.Config) (*CacheBackend, error) {
	opts := []cache.Option{cache.WithExpiry(cfg.Cache.Expiry)}

	switch cfg.Cache.Backend {
	case config.BackendNone:
		return &CacheBackend{}, nil

	case config.BackendFile:
		return &CacheBackend{Store: cache.NewFileStore(cfg.Cache.Dir, opts...)}, nil

	case config.BackendRedis:
		rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return &CacheBackend{
			Store: cache.NewRedisStore(rdb, cfg.Cache.Namespace, opts...),
			Checks: []platformhandler.Check{{
				Name:  "redis",
				Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			}},
			close: []func() error{rdb.Close},
		}, nil

	case config.BackendSQLite, config.BackendPostgres:
		gdb, err := db.Open(db.Config{
			Driver:         cfg.Cache.Backend,
			DSN:            cfg.Database.DSN,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		store := cache.NewGormStore(gdb, opts...)
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &CacheBackend{
			Store: store,
			Checks: []platformhandler.Check{{
				Name:  "database",
				Probe: sqlDB.PingContext,
			}},
			close: []func() error{sqlDB.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
