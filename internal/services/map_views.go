package services

import (
	"context"
	"encoding/json"
	"errors"
	"fieldmap-service/internal/domain"
	"fieldmap-service/internal/ports"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Number of route views fetched concurrently by Routes.
const routeFetchLimit = 5

const OrdersViewKey = "orders"

func ClientViewKey(clientID int) string { return fmt.Sprintf("client:%d", clientID) }

func RouteViewKey(routeID int) string { return fmt.Sprintf("route:%d", routeID) }

// One clustered map payload. Stale is set when the backend was unreachable
// and the clusters were computed from the last stored snapshot.
type MapView struct {
	Key       string
	Clusters  []domain.Cluster
	Summary   ClusterSummary
	Dropped   int
	Stale     bool
	FetchedAt time.Time
}

// MapService loads backend data for each map screen and clusters it.
//
// Snapshots is optional. When set, every successful fetch is stored and a
// failed fetch falls back to the stored payload if it is younger than
// MaxStale (zero means any age).
type MapService struct {
	Source      ports.OrderSource
	Snapshots   ports.SnapshotStore
	Tolerance   float64
	LabelPrefix string
	MaxStale    time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewMapService(source ports.OrderSource, snapshots ports.SnapshotStore, logger *zap.Logger) *MapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapService{
		Source:      source,
		Snapshots:   snapshots,
		Tolerance:   DefaultTolerance,
		LabelPrefix: DefaultLabelPrefix,
		Logger:      logger,
		Now:         time.Now,
	}
}

// AllOrders clusters every order known to the backend.
func (s *MapService) AllOrders(ctx context.Context) (*MapView, error) {
	orders, meta, err := load(ctx, s, OrdersViewKey, s.Source.ListOrders)
	if err != nil {
		return nil, fmt.Errorf("all orders map: %w", err)
	}

	return s.buildView(meta, OrdersToRecords(orders, s.LabelPrefix)), nil
}

// ClientPlacements clusters the existing placements of one client, as shown
// behind the location picker when a new order is created.
func (s *MapService) ClientPlacements(ctx context.Context, clientID int) (*MapView, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("client placements map: invalid client id %d", clientID)
	}

	key := ClientViewKey(clientID)
	orders, meta, err := load(ctx, s, key, func(ctx context.Context) ([]domain.Order, error) {
		return s.Source.ListClientOrders(ctx, clientID)
	})
	if err != nil {
		return nil, fmt.Errorf("client placements map: %w", err)
	}

	return s.buildView(meta, OrdersToRecords(orders, s.LabelPrefix)), nil
}

// RouteTasks clusters the tasks of one route.
func (s *MapService) RouteTasks(ctx context.Context, routeID int) (*MapView, error) {
	if routeID <= 0 {
		return nil, fmt.Errorf("route tasks map: invalid route id %d", routeID)
	}

	key := RouteViewKey(routeID)
	tasks, meta, err := load(ctx, s, key, func(ctx context.Context) ([]domain.Task, error) {
		return s.Source.ListRouteTasks(ctx, routeID)
	})
	if err != nil {
		return nil, fmt.Errorf("route tasks map: %w", err)
	}

	return s.buildView(meta, TasksToRecords(tasks, s.LabelPrefix)), nil
}

// Routes builds one view per route id, fetching up to routeFetchLimit routes
// at a time. The first failure cancels the remaining fetches.
func (s *MapService) Routes(ctx context.Context, routeIDs []int) ([]*MapView, error) {
	seen := make(map[int]struct{}, len(routeIDs))
	ids := make([]int, 0, len(routeIDs))
	for _, id := range routeIDs {
		if id <= 0 {
			return nil, fmt.Errorf("route maps: invalid route id %d", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	views := make([]*MapView, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(routeFetchLimit)

	for i, id := range ids {
		g.Go(func() error {
			v, err := s.RouteTasks(gctx, id)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("route maps: %w", err)
	}

	return views, nil
}

type viewMeta struct {
	key       string
	stale     bool
	fetchedAt time.Time
}

func (s *MapService) buildView(meta viewMeta, records []domain.GeoRecord) *MapView {
	res := ClusterRecords(records, s.Tolerance)

	if res.Dropped > 0 {
		s.Logger.Warn("dropped records with unusable coordinates",
			zap.String("view", meta.key),
			zap.Int("dropped", res.Dropped),
			zap.Int("records", len(records)),
		)
	}

	s.Logger.Debug("clustered map view",
		zap.String("view", meta.key),
		zap.Int("records", len(records)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Bool("stale", meta.stale),
	)

	return &MapView{
		Key:       meta.key,
		Clusters:  res.Clusters,
		Summary:   Summarize(res.Clusters),
		Dropped:   res.Dropped,
		Stale:     meta.stale,
		FetchedAt: meta.fetchedAt,
	}
}

func (s *MapService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// load fetches a fresh payload for key, storing it as the view's snapshot,
// or falls back to the stored snapshot when the fetch fails for a reason
// other than cancellation or a missing resource.
func load[T any](
	ctx context.Context,
	s *MapService,
	key string,
	fetch func(context.Context) ([]T, error),
) ([]T, viewMeta, error) {
	items, err := fetch(ctx)
	if err == nil {
		meta := viewMeta{key: key, fetchedAt: s.now().UTC()}
		s.storeSnapshot(ctx, key, items, meta.fetchedAt)
		return items, meta, nil
	}

	if errors.Is(err, ports.ErrNotFound) || ctx.Err() != nil || s.Snapshots == nil {
		return nil, viewMeta{}, err
	}

	snap, ok, getErr := s.Snapshots.Get(ctx, key)
	if getErr != nil {
		s.Logger.Warn("snapshot read failed", zap.String("view", key), zap.Error(getErr))
		return nil, viewMeta{}, err
	}
	if !ok {
		return nil, viewMeta{}, err
	}

	age := s.now().Sub(snap.FetchedAt)
	if s.MaxStale > 0 && age > s.MaxStale {
		s.Logger.Warn("snapshot too old to serve",
			zap.String("view", key),
			zap.Duration("age", age),
		)
		return nil, viewMeta{}, err
	}

	var stored []T
	if decodeErr := json.Unmarshal(snap.Payload, &stored); decodeErr != nil {
		s.Logger.Warn("snapshot decode failed", zap.String("view", key), zap.Error(decodeErr))
		return nil, viewMeta{}, err
	}

	s.Logger.Warn("backend unavailable, serving snapshot",
		zap.String("view", key),
		zap.Duration("age", age),
		zap.Error(err),
	)

	return stored, viewMeta{key: key, stale: true, fetchedAt: snap.FetchedAt}, nil
}

func (s *MapService) storeSnapshot(ctx context.Context, key string, items any, fetchedAt time.Time) {
	if s.Snapshots == nil {
		return
	}

	payload, err := json.Marshal(items)
	if err != nil {
		s.Logger.Warn("snapshot encode failed", zap.String("view", key), zap.Error(err))
		return
	}

	if err := s.Snapshots.Put(ctx, key, payload, fetchedAt); err != nil {
		s.Logger.Warn("snapshot write failed", zap.String("view", key), zap.Error(err))
	}
}
