package backend

import (
	"context"
	"fieldmap-service/internal/domain"
	"fieldmap-service/internal/ports"
	"fmt"
	"sync"
)

// MockOrderSource serves canned backend data. Err, when set, fails every call.
type MockOrderSource struct {
	mu           sync.Mutex
	Orders       []domain.Order
	ClientOrders map[int][]domain.Order
	RouteTasks   map[int][]domain.Task
	Err          error
	calls        int
}

func NewMockOrderSource(orders []domain.Order) *MockOrderSource {
	return &MockOrderSource{
		Orders:       orders,
		ClientOrders: map[int][]domain.Order{},
		RouteTasks:   map[int][]domain.Task{},
	}
}

func (m *MockOrderSource) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Number of calls served so far, failed ones included.
func (m *MockOrderSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockOrderSource) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.Order(nil), m.Orders...), nil
}

func (m *MockOrderSource) ListClientOrders(ctx context.Context, clientID int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	orders, ok := m.ClientOrders[clientID]
	if !ok {
		return nil, fmt.Errorf("missing client %d: %w", clientID, ports.ErrNotFound)
	}
	return append([]domain.Order(nil), orders...), nil
}

func (m *MockOrderSource) ListRouteTasks(ctx context.Context, routeID int) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}
	tasks, ok := m.RouteTasks[routeID]
	if !ok {
		return nil, fmt.Errorf("missing route %d: %w", routeID, ports.ErrNotFound)
	}
	return append([]domain.Task(nil), tasks...), nil
}
