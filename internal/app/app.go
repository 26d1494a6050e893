package app

import (
	"context"
	"fieldmap-service/internal/adapters/backend"
	"fieldmap-service/internal/adapters/cache"
	"fieldmap-service/internal/config"
	"fieldmap-service/internal/services"
	"fmt"

	"go.uber.org/zap"
)

// App holds the wired map service shared by the server and the CLI.
type App struct {
	Maps       *services.MapService
	closeStore func() error
}

// New wires concrete adapters (backend client, snapshot store) behind ports
// and configures the map service from cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	timeout, err := cfg.GetBackendTimeout()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	maxAge, err := cfg.GetSnapshotMaxAge()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	client, err := backend.NewClient(cfg.Backend.URL, cfg.Backend.Token, timeout)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	store, closeStore, err := cache.OpenSnapshotStore(ctx, cfg.Snapshot, maxAge)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	maps := services.NewMapService(client, store, logger)
	maps.Tolerance = cfg.Cluster.Tolerance
	maps.LabelPrefix = cfg.Cluster.LabelPrefix
	maps.MaxStale = maxAge

	logger.Info("map service ready",
		zap.String("backend", cfg.Backend.URL),
		zap.String("snapshot_driver", cfg.Snapshot.Driver),
		zap.Float64("tolerance", maps.Tolerance),
		zap.Duration("snapshot_max_age", maxAge),
	)

	return &App{Maps: maps, closeStore: closeStore}, nil
}

func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}
