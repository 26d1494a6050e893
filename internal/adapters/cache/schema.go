package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fieldmap-service/internal/domain"
	"fieldmap-service/internal/ports"
	"fmt"
	"os"
	"time"
)

type Dialect string

const (
	DialectSqlite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Initialize the snapshot schema for the given SQL dialect.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	var payloadType string
	switch dialect {
	case DialectSqlite:
		payloadType = "BLOB"
	case DialectPostgres:
		payloadType = "BYTEA"
	default:
		return fmt.Errorf("init schema: unsupported dialect %q", dialect)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSnapshotsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS upstream_snapshots (
		snapshot_key TEXT PRIMARY KEY,
		payload %s NOT NULL,
		fetched_at BIGINT NOT NULL
	);
	`, payloadType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_upstream_snapshots_fetched_at
    ON upstream_snapshots(fetched_at);
	`

	statements := []string{
		createSnapshotsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromJSON loads an exported GET /orders payload and stores it as the
// snapshot for key, so map views work before the backend is reachable.
func SeedFromJSON(ctx context.Context, store ports.SnapshotStore, key string, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed snapshot: read %q: %w", jsonPath, err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(bytes, &orders); err != nil {
		return fmt.Errorf("seed snapshot: parse json: %w", err)
	}

	for i, o := range orders {
		if o.ID <= 0 {
			return fmt.Errorf("seed snapshot: invalid order id at index %d: %d", i+1, o.ID)
		}
	}

	info, err := os.Stat(jsonPath)
	if err != nil {
		return fmt.Errorf("seed snapshot: stat %q: %w", jsonPath, err)
	}

	if err := store.Put(ctx, key, bytes, info.ModTime().UTC().Truncate(time.Millisecond)); err != nil {
		return fmt.Errorf("seed snapshot: %w", err)
	}

	return nil
}
