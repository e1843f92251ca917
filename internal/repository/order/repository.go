package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routedash/routedash/internal/database"
	"github.com/routedash/routedash/internal/entity"
)

var repoTracer = otel.Tracer("github.com/routedash/routedash/repository/order")

// ErrNotFound is returned when an order is missing or belongs to someone else.
var ErrNotFound = errors.New("order not found")

// editableStatuses are the states during which route fields may change.
var editableStatuses = []entity.OrderStatus{entity.OrderPending, entity.OrderPreparing}

// Store describes the persistence operations the order workflows need.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetForCustomer(ctx context.Context, orderID, customerID string) (*entity.Order, error)
	GetForRestaurant(ctx context.Context, orderID, restaurantID string) (*entity.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*entity.Order, error)
	TransitionStatus(ctx context.Context, orderID string, from, to entity.OrderStatus) (bool, error)
	UpdateRoute(ctx context.Context, orderID string, patch entity.RoutePatch) (bool, error)
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists the order and all of its items in a single transaction,
// so a reader can never observe an order without its lines.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetForCustomer fetches an order with its items, scoped to the owning
// customer so a foreign order behaves exactly like a missing one.
func (r *Repository) GetForCustomer(ctx context.Context, orderID, customerID string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetForCustomer", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Items").
		Where("o.id = ?", orderID).
		Where("o.customer_id = ?", customerID).
		Scan(ctx)
	return finishGet(span, order, err)
}

// GetForRestaurant fetches an order with its items, scoped to the restaurant.
func (r *Repository) GetForRestaurant(ctx context.Context, orderID, restaurantID string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetForRestaurant", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Items").
		Where("o.id = ?", orderID).
		Where("o.restaurant_id = ?", restaurantID).
		Scan(ctx)
	return finishGet(span, order, err)
}

// ListByCustomer returns a customer's orders with items, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByCustomer", trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Relation("Items").
		Where("o.customer_id = ?", customerID).
		Order("created_at DESC").
		Scan(ctx)
	return finishList(span, orders, err)
}

// ListByRestaurant returns every order placed at a restaurant with items,
// newest first. Analytics consumes this as its full history scan.
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByRestaurant", trace.WithAttributes(attribute.String("restaurant.id", restaurantID)))
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Relation("Items").
		Where("o.restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Scan(ctx)
	return finishList(span, orders, err)
}

// TransitionStatus flips the status only if the row still holds the expected
// current value, and reports whether the conditional write landed. Two racing
// transitions validated against the same stale read can therefore never both
// succeed.
func (r *Repository) TransitionStatus(ctx context.Context, orderID string, from, to entity.OrderStatus) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.TransitionStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(to)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", orderID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return affected > 0, nil
}

// UpdateRoute merges the supplied route fields into the order, guarded so the
// write only lands while the order is still editable. Reports whether a row
// was updated.
func (r *Repository) UpdateRoute(ctx context.Context, orderID string, patch entity.RoutePatch) (bool, error) {
	if patch.Empty() {
		return false, errors.New("empty route patch")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateRoute", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	q := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", orderID).
		Where("status IN (?)", bun.In(editableStatuses))

	if patch.RouteOrigin != nil {
		q = q.Set("route_origin = ?", *patch.RouteOrigin)
	}
	if patch.RouteDestination != nil {
		q = q.Set("route_destination = ?", *patch.RouteDestination)
	}
	if patch.PickupEtaMin != nil {
		q = q.Set("pickup_eta_min = ?", *patch.PickupEtaMin)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return affected > 0, nil
}

func finishGet(span trace.Span, order *entity.Order, err error) (*entity.Order, error) {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

func finishList(span trace.Span, orders []*entity.Order, err error) ([]*entity.Order, error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return orders, nil
}
