package domain

const (
	ClientTypeCompany    = "company"
	ClientTypeIndividual = "individual"

	UnknownClientName = "Client necunoscut"
)

// Product attached to an order. Only the name is used for map labels.
type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client as returned by the backend. Companies carry Name, individuals FullName.
type Client struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Display name used in marker callouts.
func (c *Client) DisplayName() string {
	if c == nil {
		return UnknownClientName
	}
	if c.Type == ClientTypeCompany {
		if c.Name != "" {
			return c.Name
		}
		return UnknownClientName
	}
	if c.FullName != "" {
		return c.FullName
	}
	return UnknownClientName
}

// Order as served by GET /orders and GET /clients/{id}/orders.
// Pointer fields distinguish "absent" from zero values in the JSON payload.
type Order struct {
	ID                  int      `json:"id"`
	LocationCoordinates *string  `json:"locationCoordinates"`
	Quantity            *int     `json:"quantity"`
	Product             *Product `json:"product,omitempty"`
	Client              *Client  `json:"client,omitempty"`
}

// Task as served by GET /tasks/route/{routeId}.
// The backend embeds the source order when the task was created from one.
type Task struct {
	ID                  int     `json:"id"`
	Type                string  `json:"type"`
	Status              string  `json:"status"`
	RouteID             *int    `json:"routeId,omitempty"`
	OrderID             *int    `json:"orderId,omitempty"`
	Order               *Order  `json:"order,omitempty"`
	LocationCoordinates *string `json:"locationCoordinates,omitempty"`
	ClientName          string  `json:"clientName,omitempty"`
}
