// Package app wires the datastore, the run lock, the allocator and the
// guest service from configuration. Both binaries start here.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wedding-seating/internal/config"
	"wedding-seating/internal/export"
	"wedding-seating/internal/importer"
	"wedding-seating/internal/lock"
	"wedding-seating/internal/seating"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
)

// App holds the long-lived components.
type App struct {
	Config    *config.Config
	Store     *storage.Store
	Service   *service.Service
	Allocator *seating.Allocator
	Importer  *importer.Importer
	Log       zerolog.Logger

	redis *redis.Client
}

// Open connects to the database, migrates it and builds the components.
// With REDIS_ADDR set the allocator run lock is shared through Redis,
// otherwise it is local to this process.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL}, log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	a := &App{Config: cfg, Store: store, Log: log}

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		client, err := lock.NewRedisClient(ctx, lock.RedisConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			MaxRetries: 3,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect run lock: %w", err)
		}
		a.redis = client
		locker = lock.NewRedisLocker(client, log)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis run lock")
	} else {
		locker = lock.NewLocalLocker()
	}

	a.Allocator = seating.NewAllocator(store, locker, seating.Options{
		MaxTables:     cfg.MaxTables,
		SeatsPerTable: cfg.SeatsPerTable,
	}, log)
	a.Service = service.New(store, service.Options{MaxTables: cfg.MaxTables}, log)
	a.Importer = importer.New(store, log)
	return a, nil
}

// Layout is the room described by the configuration.
func (a *App) Layout() export.Layout {
	return export.Layout{Tables: a.Config.MaxTables, SeatsPerTable: a.Config.SeatsPerTable}
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	return a.Store.Close()
}
