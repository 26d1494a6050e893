package cache

import (
	"context"
	"fieldmap-service/internal/config"
	"fieldmap-service/internal/platform/db"
	"fieldmap-service/internal/ports"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenSnapshotStore opens the store selected by cfg.Driver and prepares its
// schema. The returned close func is never nil. The "none" driver yields a
// nil store, which disables snapshot fallback.
func OpenSnapshotStore(ctx context.Context, cfg config.SnapshotConfig, ttl time.Duration) (ports.SnapshotStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.SnapshotDriverNone:
		return nil, noop, nil

	case config.SnapshotDriverSqlite:
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open snapshot store: %w", err)
		}
		if err := InitSchema(conn, DialectSqlite); err != nil {
			conn.Close()
			return nil, noop, fmt.Errorf("open snapshot store: %w", err)
		}
		return NewSqliteSnapshotCache(conn), conn.Close, nil

	case config.SnapshotDriverPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open snapshot store: %w", err)
		}
		if err := InitSchema(conn, DialectPostgres); err != nil {
			conn.Close()
			return nil, noop, fmt.Errorf("open snapshot store: %w", err)
		}
		return NewSQLSnapshotCache(conn), conn.Close, nil

	case config.SnapshotDriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open snapshot store: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return NewRedisSnapshotCache(client, ttl), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("open snapshot store: unknown driver %q", cfg.Driver)
	}
}
