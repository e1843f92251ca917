package dto

import (
	"time"

	"github.com/routedash/routedash/internal/entity"
)

// CreateOrderItem is one requested line of a new order.
type CreateOrderItem struct {
	MenuItemID string `json:"menuItemId" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	RestaurantID     string            `json:"restaurantId" validate:"required,uuid"`
	Items            []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	RouteOrigin      string            `json:"routeOrigin" validate:"required"`
	RouteDestination string            `json:"routeDestination" validate:"required"`
	PickupEtaMin     int               `json:"pickupEtaMin" validate:"required,gt=0"`
}

// UpdateRouteRequest is a partial route edit; omitted fields stay as-is.
type UpdateRouteRequest struct {
	RouteOrigin      *string `json:"routeOrigin" validate:"omitempty,min=1"`
	RouteDestination *string `json:"routeDestination" validate:"omitempty,min=1"`
	PickupEtaMin     *int    `json:"pickupEtaMin" validate:"omitempty,gt=0"`
}

// Patch converts the request into the entity-level patch.
func (r UpdateRouteRequest) Patch() entity.RoutePatch {
	return entity.RoutePatch{
		RouteOrigin:      r.RouteOrigin,
		RouteDestination: r.RouteDestination,
		PickupEtaMin:     r.PickupEtaMin,
	}
}

// UpdateStatusRequest asks for a lifecycle transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderItemResponse is one order line as exposed via transport layers.
type OrderItemResponse struct {
	ID         string `json:"id"`
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// OrderResponse represents an order as exposed via transport layers.
// Subtotal and tax are recomputed from the item snapshots on every read;
// only the total is persisted.
type OrderResponse struct {
	ID               string              `json:"id"`
	CustomerID       string              `json:"customerId"`
	RestaurantID     string              `json:"restaurantId"`
	Status           string              `json:"status"`
	Items            []OrderItemResponse `json:"items"`
	SubtotalCents    int64               `json:"subtotalCents"`
	TaxCents         int64               `json:"taxCents"`
	TotalCents       int64               `json:"totalCents"`
	RouteOrigin      string              `json:"routeOrigin"`
	RouteDestination string              `json:"routeDestination"`
	PickupEtaMin     int                 `json:"pickupEtaMin"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// NewOrderResponse maps an order entity onto its transport view.
func NewOrderResponse(order *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		})
	}

	return OrderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		RestaurantID:     order.RestaurantID,
		Status:           string(order.Status),
		Items:            items,
		SubtotalCents:    order.SubtotalCents(),
		TaxCents:         order.TaxCents(),
		TotalCents:       order.TotalCents,
		RouteOrigin:      order.RouteOrigin,
		RouteDestination: order.RouteDestination,
		PickupEtaMin:     order.PickupEtaMin,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// NewOrderListResponse maps a list of orders, never returning nil so the
// JSON encoding is always an array.
func NewOrderListResponse(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
