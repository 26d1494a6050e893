package ports

import (
	"context"
	"fieldmap-service/internal/domain"
)

// Port: the REST backend that owns orders, clients and routes.
type OrderSource interface {
	// Retrieve every order (GET /orders).
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// Retrieve the orders placed by one client (GET /clients/{id}/orders).
	ListClientOrders(ctx context.Context, clientID int) ([]domain.Order, error)
	// Retrieve the tasks scheduled on one route (GET /tasks/route/{routeId}).
	ListRouteTasks(ctx context.Context, routeID int) ([]domain.Task, error)
}
