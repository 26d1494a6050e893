package services

import (
	"fieldmap-service/internal/domain"
	"strconv"
)

// DefaultLabelPrefix matches the label the field app shows for unnamed orders.
// Deployments override it through LABEL_PREFIX.
const DefaultLabelPrefix = "Comanda #"

// OrdersToRecords maps backend orders to clustering input.
// Used by the all-orders map and the client placements view.
func OrdersToRecords(orders []domain.Order, labelPrefix string) []domain.GeoRecord {
	if labelPrefix == "" {
		labelPrefix = DefaultLabelPrefix
	}

	out := make([]domain.GeoRecord, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderRecord(o, labelPrefix))
	}
	return out
}

// TasksToRecords maps route tasks to clustering input.
// The embedded order wins when present; otherwise the task's own coordinates
// are used and the record is identified by the order id when known.
func TasksToRecords(tasks []domain.Task, labelPrefix string) []domain.GeoRecord {
	if labelPrefix == "" {
		labelPrefix = DefaultLabelPrefix
	}

	out := make([]domain.GeoRecord, 0, len(tasks))
	for _, t := range tasks {
		if t.Order != nil {
			r := orderRecord(*t.Order, labelPrefix)
			if r.Coordinates == nil {
				r.Coordinates = t.LocationCoordinates
			}
			if t.Order.Client == nil && t.ClientName != "" {
				r.ClientName = t.ClientName
			}
			out = append(out, r)
			continue
		}

		id := t.ID
		if t.OrderID != nil {
			id = *t.OrderID
		}
		clientName := t.ClientName
		if clientName == "" {
			clientName = domain.UnknownClientName
		}
		out = append(out, domain.GeoRecord{
			ID:          id,
			Coordinates: t.LocationCoordinates,
			Count:       1,
			Label:       labelPrefix + strconv.Itoa(id),
			ClientName:  clientName,
		})
	}
	return out
}

func orderRecord(o domain.Order, labelPrefix string) domain.GeoRecord {
	count := 1
	if o.Quantity != nil && *o.Quantity > 0 {
		count = *o.Quantity
	}

	label := labelPrefix + strconv.Itoa(o.ID)
	if o.Product != nil && o.Product.Name != "" {
		label = o.Product.Name
	}

	return domain.GeoRecord{
		ID:          o.ID,
		Coordinates: o.LocationCoordinates,
		Count:       count,
		Label:       label,
		ClientName:  o.Client.DisplayName(),
	}
}
