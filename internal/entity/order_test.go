package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	known := []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCanceled}

	allowed := map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderPreparing, OrderCanceled},
		OrderPreparing: {OrderReady, OrderCanceled},
		OrderReady:     {OrderCompleted, OrderCanceled},
		OrderCompleted: {},
		OrderCanceled:  {},
	}

	for _, from := range known {
		for _, to := range known {
			want := false
			for _, target := range allowed[from] {
				if target == to {
					want = true
				}
			}
			got := from.CanTransitionTo(to)
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestOrderStatusSelfTransitionDenied(t *testing.T) {
	for _, status := range []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCanceled} {
		assert.False(t, status.CanTransitionTo(status), "%s -> %s", status, status)
	}
}

func TestOrderStatusUnknownFailsClosed(t *testing.T) {
	unknown := OrderStatus("SHIPPED")
	assert.False(t, unknown.Valid())
	assert.False(t, unknown.Terminal())
	assert.False(t, unknown.CanTransitionTo(OrderCompleted))
	assert.False(t, OrderPending.CanTransitionTo(unknown))
}

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCanceled} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("pending").Valid(), "statuses are case sensitive")
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderCanceled.Terminal())
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderPreparing.Terminal())
	assert.False(t, OrderReady.Terminal())
}

func TestOrderStatusRouteEditable(t *testing.T) {
	assert.True(t, OrderPending.RouteEditable())
	assert.True(t, OrderPreparing.RouteEditable())
	assert.False(t, OrderReady.RouteEditable())
	assert.False(t, OrderCompleted.RouteEditable())
	assert.False(t, OrderCanceled.RouteEditable())
}

func TestOrderMoneyDerivation(t *testing.T) {
	order := &Order{
		TotalCents: 2706,
		Items: []*OrderItem{
			{PriceCents: 1250, Quantity: 2},
		},
	}

	assert.Equal(t, int64(2500), order.SubtotalCents())
	assert.Equal(t, int64(206), order.TaxCents())
	assert.Equal(t, order.TotalCents, order.SubtotalCents()+order.TaxCents())
}

func TestOrderMoneyDerivationNoItems(t *testing.T) {
	order := &Order{TotalCents: 0}
	assert.Equal(t, int64(0), order.SubtotalCents())
	assert.Equal(t, int64(0), order.TaxCents())
}

func TestRoutePatchEmpty(t *testing.T) {
	assert.True(t, RoutePatch{}.Empty())

	origin := "12 Pier Ave"
	assert.False(t, RoutePatch{RouteOrigin: &origin}.Empty())

	eta := 15
	assert.False(t, RoutePatch{PickupEtaMin: &eta}.Empty())
}
