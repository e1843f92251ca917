package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/routedash/routedash/pkg/pricing"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// orderTransitions holds the allowed moves per status. Statuses absent
// from a row, and statuses absent from the map entirely, allow nothing.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderPreparing: true, OrderCanceled: true},
	OrderPreparing: {OrderReady: true, OrderCanceled: true},
	OrderReady:     {OrderCompleted: true, OrderCanceled: true},
	OrderCompleted: {},
	OrderCanceled:  {},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether the status is a known state with no way out.
func (s OrderStatus) Terminal() bool {
	targets, ok := orderTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether the move to target is allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return orderTransitions[s][target]
}

// RouteEditable reports whether route details may still change.
func (s OrderStatus) RouteEditable() bool {
	return s == OrderPending || s == OrderPreparing
}

// Order is a customer's food order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID               string      `bun:",pk"`
	CustomerID       string      `bun:"customer_id,notnull"`
	RestaurantID     string      `bun:"restaurant_id,notnull"`
	Status           OrderStatus `bun:"status,notnull"`
	TotalCents       int64       `bun:"total_cents,notnull"`
	RouteOrigin      string      `bun:"route_origin,notnull"`
	RouteDestination string      `bun:"route_destination,notnull"`
	PickupEtaMin     int         `bun:"pickup_eta_min,notnull"`
	CreatedAt        time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time   `bun:"updated_at,nullzero"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// Lines converts the order items into pricing lines.
func (o *Order) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, pricing.Line{PriceCents: item.PriceCents, Quantity: item.Quantity})
	}
	return lines
}

// SubtotalCents recomputes the pre-tax sum from the item snapshots.
func (o *Order) SubtotalCents() int64 {
	return pricing.Subtotal(o.Lines())
}

// TaxCents is the stored total minus the recomputed subtotal, so the
// three amounts always reconcile no matter how the tax was rounded.
func (o *Order) TaxCents() int64 {
	return o.TotalCents - o.SubtotalCents()
}

// OrderItem is one line of an order. Name and price are snapshots taken
// from the menu item at order time and never change afterwards.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         string `bun:",pk"`
	OrderID    string `bun:"order_id,notnull"`
	MenuItemID string `bun:"menu_item_id,notnull"`
	Name       string `bun:"name,notnull"`
	PriceCents int64  `bun:"price_cents,notnull"`
	Quantity   int    `bun:"quantity,notnull"`
}

// RoutePatch carries a partial route update. Nil fields stay unchanged.
type RoutePatch struct {
	RouteOrigin      *string
	RouteDestination *string
	PickupEtaMin     *int
}

// Empty reports whether the patch changes nothing.
func (p RoutePatch) Empty() bool {
	return p.RouteOrigin == nil && p.RouteDestination == nil && p.PickupEtaMin == nil
}
