package cache

import (
	"context"
	"database/sql"
	"errors"
	"fieldmap-service/internal/platform/obs"
	"fieldmap-service/internal/ports"
	"fmt"
	"strings"
	"time"
)

// SQLSnapshotCache is a Postgres-backed store for upstream payloads.
type SQLSnapshotCache struct {
	DB *sql.DB
}

func NewSQLSnapshotCache(db *sql.DB) *SQLSnapshotCache {
	return &SQLSnapshotCache{DB: db}
}

// Fetch the stored payload for key.
func (s *SQLSnapshotCache) Get(ctx context.Context, key string) (_ ports.Snapshot, _ bool, err error) {
	defer obs.Time(ctx, "snapshot.sql.Get")(&err)

	if s.DB == nil {
		return ports.Snapshot{}, false, errors.New("snapshot cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.Snapshot{}, false, errors.New("get snapshot cache: key must not be empty")
	}

	q := `
	SELECT payload, fetched_at
    FROM upstream_snapshots
    WHERE snapshot_key = $1;
	`

	var payload []byte
	var fetchedAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Snapshot{}, false, nil
	}
	if err != nil {
		return ports.Snapshot{}, false, fmt.Errorf("get snapshot cache: query upstream_snapshots table: %w", err)
	}

	return ports.Snapshot{
		Key:       key,
		Payload:   payload,
		FetchedAt: time.UnixMilli(fetchedAt).UTC(),
	}, true, nil
}

// Store or replace the payload for key.
func (s *SQLSnapshotCache) Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	if s.DB == nil {
		return errors.New("snapshot cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert snapshot cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO upstream_snapshots (snapshot_key, payload, fetched_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (snapshot_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		fetched_at = EXCLUDED.fetched_at;
	`, key, payload, fetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert snapshot cache key=%q: %w", key, err)
	}

	return nil
}
