package ports

import (
	"context"
	"time"
)

// Last successfully fetched upstream payload for a map view.
type Snapshot struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
}

// Port: storage for upstream payloads used when the backend is unreachable.
// Clustering results are never stored here.
type SnapshotStore interface {
	// Return the snapshot for key; ok is false when none is stored.
	Get(ctx context.Context, key string) (snap Snapshot, ok bool, err error)
	// Store or replace the snapshot for key.
	Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error
}
