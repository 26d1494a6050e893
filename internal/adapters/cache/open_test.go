package cache

import (
	"context"
	"fieldmap-service/internal/config"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSnapshotStoreNone(t *testing.T) {
	store, closeFn, err := OpenSnapshotStore(context.Background(), config.SnapshotConfig{Driver: config.SnapshotDriverNone}, 0)
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeFn())
}

func TestOpenSnapshotStoreSqlite(t *testing.T) {
	cfg := config.SnapshotConfig{
		Driver: config.SnapshotDriverSqlite,
		DBPath: filepath.Join(t.TempDir(), "snapshots.db"),
	}

	store, closeFn, err := OpenSnapshotStore(context.Background(), cfg, 0)
	require.NoError(t, err)
	t.Cleanup(func() { closeFn() })

	assert.IsType(t, &SqliteSnapshotCache{}, store)
	exerciseStore(t, store)
}

func TestOpenSnapshotStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.SnapshotConfig{Driver: config.SnapshotDriverRedis, RedisAddr: mr.Addr()}
	store, closeFn, err := OpenSnapshotStore(context.Background(), cfg, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { closeFn() })

	require.IsType(t, &RedisSnapshotCache{}, store)
	assert.Equal(t, time.Hour, store.(*RedisSnapshotCache).TTL)
	exerciseStore(t, store)
}

func TestOpenSnapshotStoreFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	for _, cfg := range []config.SnapshotConfig{
		{Driver: "etcd"},
		{Driver: config.SnapshotDriverRedis, RedisAddr: addr},
	} {
		_, closeFn, err := OpenSnapshotStore(context.Background(), cfg, 0)
		assert.Error(t, err, cfg.Driver)
		assert.NotNil(t, closeFn)
	}
}
