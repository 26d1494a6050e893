package main

import (
	"context"
	"database/sql"
	"fieldmap-service/internal/adapters/cache"
	"fieldmap-service/internal/config"
	"fieldmap-service/internal/platform/db"
	"fieldmap-service/internal/platform/logging"
	"fieldmap-service/internal/ports"
	"fieldmap-service/internal/services"
	"log"
	"strings"

	"go.uber.org/zap"
)

// dbtool prepares a SQL snapshot store ahead of the first deploy and can seed
// the orders snapshot from an exported GET /orders payload (SEED_PATH).
func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	driver := config.Get("SNAPSHOT_DRIVER", config.SnapshotDriverSqlite)

	var (
		conn    *sql.DB
		dialect cache.Dialect
	)
	switch driver {
	case config.SnapshotDriverSqlite:
		dialect = cache.DialectSqlite
		conn, err = db.OpenSqlite(config.Get("DB_PATH", "data/snapshots.db"))
	case config.SnapshotDriverPostgres:
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			logger.Fatal("DATABASE_URL is required")
		}
		dialect = cache.DialectPostgres
		conn, err = db.Open(databaseURL)
	default:
		logger.Fatal("dbtool only manages sql snapshot stores", zap.String("driver", driver))
	}
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("initializing snapshot schema", zap.String("dialect", string(dialect)))
	if err := cache.InitSchema(conn, dialect); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready")

	seedPath := config.Get("SEED_PATH", "")
	if seedPath == "" {
		return
	}

	var store ports.SnapshotStore = cache.NewSqliteSnapshotCache(conn)
	if dialect == cache.DialectPostgres {
		store = cache.NewSQLSnapshotCache(conn)
	}

	logger.Info("seeding orders snapshot", zap.String("path", seedPath))
	if err := cache.SeedFromJSON(context.Background(), store, services.OrdersViewKey, seedPath); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete")
}
