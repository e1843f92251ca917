package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/cache"
	"github.com/routedash/routedash/internal/config"
	"github.com/routedash/routedash/internal/entity"
	"github.com/routedash/routedash/internal/messaging"
	catalogrepo "github.com/routedash/routedash/internal/repository/catalog"
	repo "github.com/routedash/routedash/internal/repository/order"
	"github.com/routedash/routedash/pkg/errorbank"
	"github.com/routedash/routedash/pkg/pricing"
)

var serviceTracer = otel.Tracer("github.com/routedash/routedash/service/order")

// statusAttempts bounds how often a lifecycle write is retried after losing
// a conditional update race before giving up with a conflict.
const statusAttempts = 2

// LineInput is one requested order line.
type LineInput struct {
	MenuItemID string
	Quantity   int
}

// CreateInput carries everything needed to place a new order.
type CreateInput struct {
	CustomerID       string
	RestaurantID     string
	Items            []LineInput
	RouteOrigin      string
	RouteDestination string
	PickupEtaMin     int
}

// Service encapsulates the order lifecycle: creation, status transitions,
// and route edits.
type Service struct {
	orders    repo.Store
	catalog   catalogrepo.Store
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    repo.Store
	Catalog   catalogrepo.Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:    p.Orders,
		catalog:   p.Catalog,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create validates availability, prices the order from canonical menu data,
// and persists the order with its items atomically.
func (s *Service) Create(ctx context.Context, input CreateInput) (*entity.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.String("restaurant.id", input.RestaurantID),
		attribute.Int("order.items", len(input.Items)),
	))
	defer span.End()

	restaurant, err := s.catalog.RestaurantByID(ctx, input.RestaurantID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, errorbank.NotFound("restaurant not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load restaurant", errorbank.WithCause(err))
	}
	if !restaurant.Active {
		return nil, errorbank.NotFound("restaurant not found")
	}

	ids := make([]string, 0, len(input.Items))
	for _, line := range input.Items {
		ids = append(ids, line.MenuItemID)
	}

	available, err := s.catalog.AvailableItems(ctx, input.RestaurantID, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load menu items", errorbank.WithCause(err))
	}

	// Every requested id must resolve on its own; comparing counts would
	// let a duplicated id mask a missing one.
	var missing []string
	for _, line := range input.Items {
		if _, ok := available[line.MenuItemID]; !ok {
			missing = append(missing, line.MenuItemID)
		}
	}
	if len(missing) > 0 {
		return nil, errorbank.BadRequest("items unavailable", errorbank.WithDetail("menuItemIds", missing))
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:               uuid.NewString(),
		CustomerID:       input.CustomerID,
		RestaurantID:     input.RestaurantID,
		Status:           entity.OrderPending,
		RouteOrigin:      input.RouteOrigin,
		RouteDestination: input.RouteDestination,
		PickupEtaMin:     input.PickupEtaMin,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	lines := make([]pricing.Line, 0, len(input.Items))
	for _, line := range input.Items {
		menuItem := available[line.MenuItemID]
		order.Items = append(order.Items, &entity.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			PriceCents: menuItem.PriceCents,
			Quantity:   line.Quantity,
		})
		lines = append(lines, pricing.Line{PriceCents: menuItem.PriceCents, Quantity: line.Quantity})
	}
	order.TotalCents = pricing.Calculate(lines).TotalCents

	if err := s.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", order.ID), zap.Error(err))
	}

	s.publishEvent(ctx, EventOrderCreated, order, "")
	return order, nil
}

func validateCreate(input CreateInput) error {
	if len(input.Items) == 0 {
		return errorbank.BadRequest("at least one item required")
	}
	for _, line := range input.Items {
		if line.MenuItemID == "" {
			return errorbank.BadRequest("menuItemId is required")
		}
		if line.Quantity < 1 {
			return errorbank.BadRequest("item quantity must be positive")
		}
	}
	if strings.TrimSpace(input.RouteOrigin) == "" {
		return errorbank.BadRequest("routeOrigin is required")
	}
	if strings.TrimSpace(input.RouteDestination) == "" {
		return errorbank.BadRequest("routeDestination is required")
	}
	if input.PickupEtaMin <= 0 {
		return errorbank.BadRequest("pickupEtaMin must be positive")
	}
	return nil
}

// GetForCustomer retrieves one of the customer's orders, consulting the
// cache first. A cache hit still enforces ownership.
func (s *Service) GetForCustomer(ctx context.Context, orderID, customerID string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.GetForCustomer", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if order, err := s.getFromCache(ctx, orderID); err == nil {
		if order.CustomerID != customerID {
			return nil, errorbank.NotFound("order not found")
		}
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("id", orderID), zap.Error(err))
	}

	order, err := s.orders.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", orderID), zap.Error(err))
	}

	return order, nil
}

// ListForCustomer returns the customer's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListForCustomer", trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListForRestaurant returns every order placed at the restaurant, newest first.
func (s *Service) ListForRestaurant(ctx context.Context, restaurantID string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListForRestaurant", trace.WithAttributes(attribute.String("restaurant.id", restaurantID)))
	defer span.End()

	orders, err := s.orders.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// UpdateStatus drives the order lifecycle. Same-state requests are no-ops,
// illegal moves fail with a bad request, and the write is conditional on the
// status the validation saw, so two racing transitions can never both land.
func (s *Service) UpdateStatus(ctx context.Context, restaurantID, orderID string, next entity.OrderStatus) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status.next", string(next)),
	))
	defer span.End()

	if !next.Valid() {
		return nil, errorbank.BadRequest("invalid status transition",
			errorbank.WithDetail("status", string(next)))
	}

	for attempt := 0; attempt < statusAttempts; attempt++ {
		order, err := s.orders.GetForRestaurant(ctx, orderID, restaurantID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, errorbank.NotFound("order not found")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
		}

		if order.Status == next {
			return order, nil
		}

		if !order.Status.CanTransitionTo(next) {
			return nil, errorbank.BadRequest("invalid status transition",
				errorbank.WithDetail("from", string(order.Status)),
				errorbank.WithDetail("to", string(next)))
		}

		ok, err := s.orders.TransitionStatus(ctx, orderID, order.Status, next)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to update status", errorbank.WithCause(err))
		}
		if !ok {
			// Lost the race; re-read and validate against the fresh status.
			continue
		}

		previous := order.Status
		order.Status = next
		order.UpdatedAt = time.Now().UTC()
		s.invalidateCache(ctx, orderID)
		s.publishEvent(ctx, EventOrderStatusChanged, order, previous)
		return order, nil
	}

	return nil, errorbank.Conflict("order status changed concurrently")
}

// UpdateRoute merges route edits into the order while it is still editable.
// Omitted fields keep their stored values.
func (s *Service) UpdateRoute(ctx context.Context, orderID, customerID string, patch entity.RoutePatch) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateRoute", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if patch.Empty() {
		return nil, errorbank.BadRequest("at least one field required")
	}
	if patch.RouteOrigin != nil && strings.TrimSpace(*patch.RouteOrigin) == "" {
		return nil, errorbank.BadRequest("routeOrigin must not be empty")
	}
	if patch.RouteDestination != nil && strings.TrimSpace(*patch.RouteDestination) == "" {
		return nil, errorbank.BadRequest("routeDestination must not be empty")
	}
	if patch.PickupEtaMin != nil && *patch.PickupEtaMin <= 0 {
		return nil, errorbank.BadRequest("pickupEtaMin must be positive")
	}

	for attempt := 0; attempt < statusAttempts; attempt++ {
		order, err := s.orders.GetForCustomer(ctx, orderID, customerID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, errorbank.NotFound("order not found")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
		}

		if !order.Status.RouteEditable() {
			return nil, errorbank.BadRequest(
				fmt.Sprintf("route cannot be updated while order is %s", order.Status))
		}

		ok, err := s.orders.UpdateRoute(ctx, orderID, patch)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to update route", errorbank.WithCause(err))
		}
		if !ok {
			// Status moved between read and write; re-read so the error
			// names the status that actually blocked the edit.
			continue
		}

		if patch.RouteOrigin != nil {
			order.RouteOrigin = *patch.RouteOrigin
		}
		if patch.RouteDestination != nil {
			order.RouteDestination = *patch.RouteDestination
		}
		if patch.PickupEtaMin != nil {
			order.PickupEtaMin = *patch.PickupEtaMin
		}
		order.UpdatedAt = time.Now().UTC()
		s.invalidateCache(ctx, orderID)
		return order, nil
	}

	return nil, errorbank.Conflict("order changed concurrently")
}

func (s *Service) cacheKey(id string) string {
	return fmt.Sprintf("orders:%s", id)
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
