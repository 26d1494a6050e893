package services

import (
	"context"
	"errors"
	"fieldmap-service/internal/adapters/backend"
	"fieldmap-service/internal/domain"
	"fieldmap-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memSnapshots struct {
	mu    sync.Mutex
	snaps map[string]ports.Snapshot
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snaps: map[string]ports.Snapshot{}}
}

func (m *memSnapshots) Get(ctx context.Context, key string) (ports.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[key]
	return s, ok, nil
}

func (m *memSnapshots) Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = ports.Snapshot{Key: key, Payload: payload, FetchedAt: fetchedAt}
	return nil
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{ID: 1, LocationCoordinates: coords("44.4268,26.1025"), Quantity: intPtr(2), Product: &domain.Product{Name: "P1"}},
		{ID: 2, LocationCoordinates: coords("44.4269,26.1026"), Quantity: intPtr(3), Product: &domain.Product{Name: "P2"}},
		{ID: 3, LocationCoordinates: coords("45.0,26.0"), Quantity: intPtr(1), Product: &domain.Product{Name: "P3"}},
		{ID: 4, Quantity: intPtr(5), Product: &domain.Product{Name: "P4"}},
	}
}

func newTestService(src ports.OrderSource, snaps ports.SnapshotStore) (*MapService, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewMapService(src, snaps, zap.New(core))
	svc.Now = func() time.Time { return fixedNow }
	return svc, logs
}

func TestAllOrdersClustersAndStoresSnapshot(t *testing.T) {
	src := backend.NewMockOrderSource(sampleOrders())
	snaps := newMemSnapshots()
	svc, logs := newTestService(src, snaps)

	view, err := svc.AllOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OrdersViewKey, view.Key)
	assert.False(t, view.Stale)
	assert.Equal(t, fixedNow, view.FetchedAt)
	assert.Equal(t, 1, view.Dropped)
	assert.Equal(t, ClusterSummary{Clusters: 2, Total: 6}, view.Summary)
	require.Len(t, view.Clusters, 2)
	assert.Equal(t, "P1", view.Clusters[0].Label)
	assert.Equal(t, 5, view.Clusters[0].Count)

	_, ok, _ := snaps.Get(context.Background(), OrdersViewKey)
	assert.True(t, ok)

	dropped := logs.FilterMessage("dropped records with unusable coordinates").All()
	require.Len(t, dropped, 1)
	assert.EqualValues(t, 1, dropped[0].ContextMap()["dropped"])
}

func TestAllOrdersFallsBackToSnapshot(t *testing.T) {
	src := backend.NewMockOrderSource(sampleOrders())
	snaps := newMemSnapshots()
	svc, logs := newTestService(src, snaps)

	_, err := svc.AllOrders(context.Background())
	require.NoError(t, err)

	src.SetErr(errors.New("connection refused"))
	svc.Now = func() time.Time { return fixedNow.Add(time.Hour) }

	view, err := svc.AllOrders(context.Background())
	require.NoError(t, err)
	assert.True(t, view.Stale)
	assert.Equal(t, fixedNow, view.FetchedAt)
	assert.Equal(t, 6, view.Summary.Total)
	assert.Len(t, logs.FilterMessage("backend unavailable, serving snapshot").All(), 1)
}

func TestAllOrdersFailsWithoutSnapshot(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	src.SetErr(errors.New("connection refused"))

	svc, _ := newTestService(src, newMemSnapshots())
	_, err := svc.AllOrders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	svc, _ = newTestService(src, nil)
	_, err = svc.AllOrders(context.Background())
	assert.Error(t, err)
}

func TestSnapshotOlderThanMaxStaleIsIgnored(t *testing.T) {
	src := backend.NewMockOrderSource(sampleOrders())
	svc, _ := newTestService(src, newMemSnapshots())
	svc.MaxStale = 30 * time.Minute

	_, err := svc.AllOrders(context.Background())
	require.NoError(t, err)

	src.SetErr(errors.New("timeout"))
	svc.Now = func() time.Time { return fixedNow.Add(time.Hour) }

	_, err = svc.AllOrders(context.Background())
	assert.Error(t, err)
}

func TestNotFoundDoesNotFallBack(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	snaps := newMemSnapshots()
	require.NoError(t, snaps.Put(context.Background(), ClientViewKey(9), []byte(`[]`), fixedNow))

	svc, _ := newTestService(src, snaps)
	_, err := svc.ClientPlacements(context.Background(), 9)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestClientPlacements(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	src.ClientOrders[12] = []domain.Order{
		{ID: 30, LocationCoordinates: coords("46.7712,23.6236"), Quantity: intPtr(2), Client: &domain.Client{Type: domain.ClientTypeCompany, Name: "Acme"}},
		{ID: 31, LocationCoordinates: coords("46.77121,23.62361")},
	}
	svc, _ := newTestService(src, nil)

	view, err := svc.ClientPlacements(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "client:12", view.Key)
	require.Len(t, view.Clusters, 1)
	assert.Equal(t, 3, view.Clusters[0].Count)
	assert.Equal(t, "Acme", view.Clusters[0].ClientName)
	assert.Equal(t, "Comanda #30", view.Clusters[0].Label)

	_, err = svc.ClientPlacements(context.Background(), 0)
	assert.Error(t, err)
}

func TestRouteTasksUsesTolerance(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	src.RouteTasks[7] = []domain.Task{
		{ID: 1, LocationCoordinates: coords("0,0")},
		{ID: 2, LocationCoordinates: coords("0.001,0")},
	}
	svc, _ := newTestService(src, nil)

	view, err := svc.RouteTasks(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, view.Clusters, 2)

	svc.Tolerance = 0.01
	view, err = svc.RouteTasks(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, view.Clusters, 1)
	assert.Equal(t, "route:7", view.Key)
}

func TestRoutesBatch(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	for id := 1; id <= 8; id++ {
		src.RouteTasks[id] = []domain.Task{{ID: id * 10, LocationCoordinates: coords("45.1,24.1")}}
	}
	svc, _ := newTestService(src, nil)

	views, err := svc.Routes(context.Background(), []int{3, 1, 8, 3, 2, 7, 6, 5, 4})
	require.NoError(t, err)
	require.Len(t, views, 8)
	assert.Equal(t, "route:3", views[0].Key)
	assert.Equal(t, "route:1", views[1].Key)
	assert.Equal(t, "route:4", views[7].Key)
	assert.Equal(t, 8, src.Calls())
}

func TestRoutesBatchFailsOnMissingRoute(t *testing.T) {
	src := backend.NewMockOrderSource(nil)
	src.RouteTasks[1] = []domain.Task{}
	svc, _ := newTestService(src, nil)

	_, err := svc.Routes(context.Background(), []int{1, 99})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.Routes(context.Background(), []int{1, -4})
	assert.Error(t, err)
}
