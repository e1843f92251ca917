package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routedash/routedash/internal/database"
	"github.com/routedash/routedash/internal/entity"
)

var repoTracer = otel.Tracer("github.com/routedash/routedash/repository/catalog")

// ErrNotFound is returned when a restaurant is missing or owned by someone else.
var ErrNotFound = errors.New("restaurant not found")

// Store describes read access to restaurants and their menus. The order
// workflows treat the catalog as read-only reference data.
type Store interface {
	RestaurantByID(ctx context.Context, restaurantID string) (*entity.Restaurant, error)
	RestaurantForOwner(ctx context.Context, restaurantID, ownerID string) (*entity.Restaurant, error)
	AvailableItems(ctx context.Context, restaurantID string, menuItemIDs []string) (map[string]*entity.MenuItem, error)
	MenuSections(ctx context.Context, restaurantID string) ([]*entity.MenuSection, error)
}

// Repository reads restaurants and menu data from the replica.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires the catalog repository.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// RestaurantByID fetches one restaurant by primary key.
func (r *Repository) RestaurantByID(ctx context.Context, restaurantID string) (*entity.Restaurant, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.RestaurantByID", trace.WithAttributes(attribute.String("restaurant.id", restaurantID)))
	defer span.End()

	restaurant := new(entity.Restaurant)
	err := r.reader.NewSelect().Model(restaurant).
		Where("r.id = ?", restaurantID).
		Scan(ctx)
	return finishRestaurant(span, restaurant, err)
}

// RestaurantForOwner fetches a restaurant only when the owner matches, so a
// foreign restaurant is indistinguishable from a missing one.
func (r *Repository) RestaurantForOwner(ctx context.Context, restaurantID, ownerID string) (*entity.Restaurant, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.RestaurantForOwner", trace.WithAttributes(attribute.String("restaurant.id", restaurantID)))
	defer span.End()

	restaurant := new(entity.Restaurant)
	err := r.reader.NewSelect().Model(restaurant).
		Where("r.id = ?", restaurantID).
		Where("r.owner_id = ?", ownerID).
		Scan(ctx)
	return finishRestaurant(span, restaurant, err)
}

// AvailableItems resolves the requested menu item ids against the
// restaurant's currently available items, keyed by id. Ids that do not
// resolve are simply absent from the result.
func (r *Repository) AvailableItems(ctx context.Context, restaurantID string, menuItemIDs []string) (map[string]*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.AvailableItems", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID),
		attribute.Int("menu.requested", len(menuItemIDs)),
	))
	defer span.End()

	if len(menuItemIDs) == 0 {
		return map[string]*entity.MenuItem{}, nil
	}

	var items []*entity.MenuItem
	err := r.reader.NewSelect().Model(&items).
		Where("mi.restaurant_id = ?", restaurantID).
		Where("mi.available = TRUE").
		Where("mi.id IN (?)", bun.In(dedupe(menuItemIDs))).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	byID := make(map[string]*entity.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

// MenuSections loads the full menu for a restaurant, sections in display
// order with their items.
func (r *Repository) MenuSections(ctx context.Context, restaurantID string) ([]*entity.MenuSection, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.MenuSections", trace.WithAttributes(attribute.String("restaurant.id", restaurantID)))
	defer span.End()

	var sections []*entity.MenuSection
	err := r.reader.NewSelect().Model(&sections).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("name ASC")
		}).
		Where("ms.restaurant_id = ?", restaurantID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if sections == nil {
		sections = []*entity.MenuSection{}
	}
	return sections, nil
}

func finishRestaurant(span trace.Span, restaurant *entity.Restaurant, err error) (*entity.Restaurant, error) {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return restaurant, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
