// Package storage opens the slot backend selected by configuration.
package storage

import (
	"context"
	"errors"
	"fmt"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/infrastructure/postgres"
	redisclient "github.com/fastygo/taskflow/internal/infrastructure/redis"
	"github.com/fastygo/taskflow/repository"
	boltrepo "github.com/fastygo/taskflow/repository/bolt"
	"github.com/fastygo/taskflow/repository/memory"
	pgrepo "github.com/fastygo/taskflow/repository/postgres"
	redisrepo "github.com/fastygo/taskflow/repository/redis"
)

type closer struct {
	name string
	fn   func() error
}

// Backend bundles the slot store with the connections it owns.
// Redis is set when the redis driver or a notification channel is configured.
type Backend struct {
	Driver string
	Slots  repository.SlotStore
	Redis  *goRedis.Client

	closers []closer
}

// Open connects the configured driver. Postgres migrations run first when enabled.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backend{Driver: cfg.Storage.Driver}

	needRedis := cfg.Storage.Driver == config.DriverRedis || cfg.Redis.NotifyChannel != ""
	if needRedis {
		client, err := redisclient.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.Redis = client
		b.closers = append(b.closers, closer{name: "redis", fn: client.Close})
	}

	switch cfg.Storage.Driver {
	case config.DriverBolt:
		store, err := boltrepo.Open(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
		if err != nil {
			b.closeAll(logger)
			return nil, fmt.Errorf("open bolt slots at %s: %w", cfg.Storage.BoltPath, err)
		}
		b.Slots = store
		b.closers = append(b.closers, closer{name: "bolt", fn: store.Close})
	case config.DriverRedis:
		b.Slots = redisrepo.NewSlotStore(b.Redis, cfg.Redis.KeyPrefix)
	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg, logger); err != nil {
			b.closeAll(logger)
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			b.closeAll(logger)
			return nil, err
		}
		b.Slots = pgrepo.NewSlotStore(pool)
		b.closers = append(b.closers, closer{name: "postgres", fn: func() error {
			postgres.Close(pool, logger)
			return nil
		}})
	case config.DriverMemory:
		b.Slots = memory.NewSlotStore()
	default:
		b.closeAll(logger)
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	logger.Info("slot storage ready", zap.String("driver", b.Driver))
	return b, nil
}

// Close releases every connection, newest first.
func (b *Backend) Close(_ context.Context) error {
	var result error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].fn(); err != nil {
			result = errors.Join(result, fmt.Errorf("close %s: %w", b.closers[i].name, err))
		}
	}
	b.closers = nil
	return result
}

func (b *Backend) closeAll(logger *zap.Logger) {
	if err := b.Close(context.Background()); err != nil {
		logger.Warn("failed to release storage connections", zap.Error(err))
	}
}
