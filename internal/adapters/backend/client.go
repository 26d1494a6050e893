package backend

import (
	"context"
	"errors"
	"fieldmap-service/internal/domain"
	"fieldmap-service/internal/platform/obs"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client implements ports.OrderSource against the field-ops REST backend.
//
// Every call is a plain GET returning a JSON array. Transient failures are
// retried with exponential backoff; the caller's context bounds the total
// time spent.
//
// The client is safe for concurrent use.
type Client struct {
	session     *http.Client
	baseURL     string
	token       string
	maxAttempts int
	backoff     time.Duration
}

func NewClient(baseURL string, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("backend base url %q must use http or https", baseURL)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		token:       strings.TrimSpace(token),
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}

	return client, nil
}

// ListOrders returns every order known to the backend.
func (c *Client) ListOrders(ctx context.Context) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "backend.ListOrders")(&err)

	var orders []domain.Order
	if err := c.getJSON(ctx, "/orders", &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, nil
}

// ListClientOrders returns the orders placed by one client.
func (c *Client) ListClientOrders(ctx context.Context, clientID int) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "backend.ListClientOrders")(&err)

	if clientID <= 0 {
		return nil, fmt.Errorf("list client orders: invalid client id %d", clientID)
	}

	var orders []domain.Order
	if err := c.getJSON(ctx, fmt.Sprintf("/clients/%d/orders", clientID), &orders); err != nil {
		return nil, fmt.Errorf("list client orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, nil
}

// ListRouteTasks returns the tasks scheduled on one route.
func (c *Client) ListRouteTasks(ctx context.Context, routeID int) (_ []domain.Task, err error) {
	defer obs.Time(ctx, "backend.ListRouteTasks")(&err)

	if routeID <= 0 {
		return nil, fmt.Errorf("list route tasks: invalid route id %d", routeID)
	}

	var tasks []domain.Task
	if err := c.getJSON(ctx, fmt.Sprintf("/tasks/route/%d", routeID), &tasks); err != nil {
		return nil, fmt.Errorf("list route tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, nil
}
