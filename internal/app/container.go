// Package app is the composition root: it builds the synchronizer and its
// collaborators from configuration. Applications own the container; there is
// no process-wide shared instance.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/entitle/internal/entitlement/application"
	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/cache"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/remote"
	"github.com/felixgeelhaar/entitle/internal/identity"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/storage"
	"github.com/felixgeelhaar/entitle/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store        storage.Store
	Identity     *identity.Manager
	Cache        *cache.SnapshotCache
	Bus          eventbus.Publisher
	Synchronizer *application.Synchronizer
}

// NewContainer builds the dependency graph. The platform purchase provider
// is supplied by the embedder; everything else is derived from config.
func NewContainer(ctx context.Context, cfg *config.Config, platform domain.PurchaseProvider, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := newBus(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	identityManager := identity.NewManager(store, logger)
	snapshotCache := cache.NewSnapshotCache(store, logger, cache.WithTTL(cfg.CacheTTL))

	synchronizer := application.NewSynchronizer(application.Dependencies{
		Platform: platform,
		Identity: identityManager,
		Cache:    snapshotCache,
		Bus:      bus,
		Logger:   logger,
		NewRemoteClient: func(apiKey, baseURL string) application.RemoteClient {
			return remote.NewClient(remote.Config{
				APIKey:         apiKey,
				BaseURL:        baseURL,
				Timeout:        cfg.HTTPTimeout,
				BreakerEnabled: cfg.BreakerEnabled,
			}, logger)
		},
	})

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Identity:     identityManager,
		Cache:        snapshotCache,
		Bus:          bus,
		Synchronizer: synchronizer,
	}, nil
}

// Close tears the container down: synchronizer first so background work
// quiesces before its collaborators disappear.
func (c *Container) Close() {
	c.Synchronizer.Close()
	if err := c.Bus.Close(); err != nil {
		c.Logger.Warn("error closing event bus", "error", err)
	}
	if err := c.Store.Close(); err != nil {
		c.Logger.Warn("error closing storage", "error", err)
	}
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		return storage.NewFileStore(cfg.StorageDir), nil
	case config.StorageSQLite:
		return storage.NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.StorageRedis:
		return storage.NewRedisStore(ctx, cfg.RedisURL)
	case config.StoragePostgres:
		return storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newBus(cfg *config.Config, logger *slog.Logger) (eventbus.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		return eventbus.NewInProcessBus(logger), nil
	}
	return eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
}
