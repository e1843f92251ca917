package restaurant

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/dto"
	"github.com/routedash/routedash/internal/entity"
	"github.com/routedash/routedash/internal/presentation/http/response"
	catalogrepo "github.com/routedash/routedash/internal/repository/catalog"
	analyticssvc "github.com/routedash/routedash/internal/service/analytics"
	ordersvc "github.com/routedash/routedash/internal/service/order"
	"github.com/routedash/routedash/internal/transport/http/middleware"
	"github.com/routedash/routedash/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/routedash/routedash/transport/http/restaurant")

// Handler exposes the merchant-facing restaurant endpoints over HTTP.
type Handler struct {
	orders    *ordersvc.Service
	analytics *analyticssvc.Service
	catalog   catalogrepo.Store
	logger    *zap.Logger
}

// NewHandler constructs a restaurant Handler.
func NewHandler(orders *ordersvc.Service, analytics *analyticssvc.Service, catalog catalogrepo.Store, logger *zap.Logger) *Handler {
	return &Handler{orders: orders, analytics: analytics, catalog: catalog, logger: logger}
}

// Register routes with the provided Echo instance. The menu is public; every
// other restaurant route requires an authenticated merchant principal.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/restaurants/:id/menu", h.menu)

	g := e.Group("/restaurants/:id", middleware.RequirePrincipal())
	g.GET("/orders", h.listOrders)
	g.PATCH("/orders/:orderId", h.updateStatus)
	g.GET("/analytics", h.analyticsSnapshot)
}

// authorize resolves the restaurant for the calling merchant. A restaurant
// that is missing or owned by someone else reads as NotFound, so the endpoint
// never confirms existence to a non-owner.
func (h *Handler) authorize(c echo.Context) (string, error) {
	restaurantID := c.Param("id")
	if _, err := uuid.Parse(restaurantID); err != nil {
		return "", errorbank.BadRequest("invalid restaurant id", errorbank.WithCause(err))
	}

	_, err := h.catalog.RestaurantForOwner(c.Request().Context(), restaurantID, middleware.PrincipalID(c))
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return "", errorbank.NotFound("restaurant not found")
		}
		return "", errorbank.Internal("failed to load restaurant", errorbank.WithCause(err))
	}
	return restaurantID, nil
}

// listOrders returns every order placed at the restaurant. As a read-only
// listing it degrades to an empty result when the store is unavailable.
func (h *Handler) listOrders(c echo.Context) error {
	b := response.New(c)

	restaurantID, err := h.authorize(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "restaurants.listOrders", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID),
	))
	defer span.End()

	orders, err := h.orders.ListForRestaurant(ctx, restaurantID)
	if err != nil {
		h.logger.Warn("restaurant order listing degraded to empty", zap.String("restaurant_id", restaurantID), zap.Error(err))
		return b.WithData(dto.NewOrderListResponse(nil)).Build()
	}

	return b.WithData(dto.NewOrderListResponse(orders)).Build()
}

// updateStatus drives an order through its lifecycle. Mutations never degrade;
// every failure is reported to the caller.
func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	restaurantID, err := h.authorize(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	orderID := c.Param("orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		return b.WithError(errorbank.BadRequest("invalid order id", errorbank.WithCause(err))).Build()
	}

	var payload dto.UpdateStatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	next := entity.OrderStatus(strings.ToUpper(strings.TrimSpace(payload.Status)))

	ctx, span := httpTracer.Start(c.Request().Context(), "restaurants.updateStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status.next", string(next)),
	))
	defer span.End()

	order, err := h.orders.UpdateStatus(ctx, restaurantID, orderID, next)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

// analyticsSnapshot serves the derived analytics view for the restaurant,
// degrading to an all-zero snapshot when the order history cannot be read.
func (h *Handler) analyticsSnapshot(c echo.Context) error {
	b := response.New(c)

	restaurantID, err := h.authorize(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return b.WithError(errorbank.BadRequest("limit must be a positive integer")).Build()
		}
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "restaurants.analytics", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID),
	))
	defer span.End()

	snap, err := h.analytics.Snapshot(ctx, restaurantID, limit)
	if err != nil {
		h.logger.Warn("analytics degraded to empty snapshot", zap.String("restaurant_id", restaurantID), zap.Error(err))
		snap = h.analytics.EmptySnapshot(restaurantID, limit)
	}

	return b.WithData(dto.NewAnalyticsResponse(snap)).Build()
}

// menu serves the public menu for browsing: sections in display order with
// their items. Degrades to an empty menu when the catalog cannot be read.
func (h *Handler) menu(c echo.Context) error {
	b := response.New(c)

	restaurantID := c.Param("id")
	if _, err := uuid.Parse(restaurantID); err != nil {
		return b.WithError(errorbank.BadRequest("invalid restaurant id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "restaurants.menu", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID),
	))
	defer span.End()

	restaurant, err := h.catalog.RestaurantByID(ctx, restaurantID)
	if err != nil || !restaurant.Active {
		if err != nil && !errors.Is(err, catalogrepo.ErrNotFound) {
			return b.WithError(errorbank.Internal("failed to load restaurant", errorbank.WithCause(err))).Build()
		}
		return b.WithError(errorbank.NotFound("restaurant not found")).Build()
	}

	sections, err := h.catalog.MenuSections(ctx, restaurantID)
	if err != nil {
		h.logger.Warn("menu degraded to empty", zap.String("restaurant_id", restaurantID), zap.Error(err))
		return b.WithData(dto.NewMenuResponse(nil)).Build()
	}

	return b.WithData(dto.NewMenuResponse(sections)).Build()
}
