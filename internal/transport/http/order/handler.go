package order

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/dto"
	"github.com/routedash/routedash/internal/presentation/http/response"
	service "github.com/routedash/routedash/internal/service/order"
	"github.com/routedash/routedash/internal/transport/http/middleware"
	"github.com/routedash/routedash/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/routedash/routedash/transport/http/order")

// Handler exposes the customer-facing order endpoints over HTTP.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register routes with the provided Echo instance. Every order route requires
// an authenticated customer principal.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders", middleware.RequirePrincipal())
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:orderId", h.getByID)
	g.PATCH("/:orderId/route", h.updateRoute)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.String("restaurant.id", payload.RestaurantID),
	))
	defer span.End()

	items := make([]service.LineInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, service.LineInput{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}

	order, err := h.svc.Create(ctx, service.CreateInput{
		CustomerID:       middleware.PrincipalID(c),
		RestaurantID:     payload.RestaurantID,
		Items:            items,
		RouteOrigin:      payload.RouteOrigin,
		RouteDestination: payload.RouteDestination,
		PickupEtaMin:     payload.PickupEtaMin,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order)).Build()
}

// list returns the caller's order history. As a read-only listing it degrades
// to an empty result when the store is unavailable instead of failing.
func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	customerID := middleware.PrincipalID(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.ListForCustomer(ctx, customerID)
	if err != nil {
		h.logger.Warn("order listing degraded to empty", zap.String("customer_id", customerID), zap.Error(err))
		return b.WithData(dto.NewOrderListResponse(nil)).Build()
	}

	return b.WithData(dto.NewOrderListResponse(orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	orderID := c.Param("orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	order, err := h.svc.GetForCustomer(ctx, orderID, middleware.PrincipalID(c))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) updateRoute(c echo.Context) error {
	b := response.New(c)

	orderID := c.Param("orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}

	var payload dto.UpdateRouteRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateRoute", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	order, err := h.svc.UpdateRoute(ctx, orderID, middleware.PrincipalID(c), payload.Patch())
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}
