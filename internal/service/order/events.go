package order

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/entity"
)

// Lifecycle event names published to the order topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is emitted whenever an order is created or its status moves.
type OrderEvent struct {
	Event          string             `json:"event"`
	OrderID        string             `json:"orderId"`
	CustomerID     string             `json:"customerId"`
	RestaurantID   string             `json:"restaurantId"`
	Status         entity.OrderStatus `json:"status"`
	PreviousStatus entity.OrderStatus `json:"previousStatus,omitempty"`
	TotalCents     int64              `json:"totalCents"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// publishEvent emits a lifecycle event keyed by order id, so every event of
// one order lands on the same partition in order.
func (s *Service) publishEvent(ctx context.Context, name string, order *entity.Order, previous entity.OrderStatus) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}

	event := OrderEvent{
		Event:          name,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		RestaurantID:   order.RestaurantID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalCents:     order.TotalCents,
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("event", name), zap.Error(err))
		return
	}

	if err := s.publisher.Publish(ctx, []byte(order.ID), payload); err != nil {
		s.logger.Error("publish order event",
			zap.String("event", name),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
