package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/database"
	"github.com/routedash/routedash/internal/entity"
	"github.com/routedash/routedash/pkg/pricing"
)

const (
	customerCount   = 8
	restaurantCount = 3
	ordersPerVenue  = 120
	historyDays     = 35
	canceledShare   = 0.1
	completedShare  = 0.75
)

// busyHours weights order creation toward lunch and dinner service so the
// peak-hour analytics have a recognizable shape.
var busyHours = []int{11, 12, 12, 13, 17, 18, 18, 19, 19, 20, 21, 9, 15}

type seedDish struct {
	name  string
	cents int64
}

var menuCatalog = []struct {
	section string
	dishes  []seedDish
}{
	{"Starters", []seedDish{
		{"Loaded Nachos", 895}, {"Garlic Knots", 595}, {"Soup of the Day", 495},
		{"Fried Pickles", 650},
	}},
	{"Mains", []seedDish{
		{"Classic Cheeseburger", 1295}, {"BBQ Brisket Sandwich", 1450},
		{"Grilled Chicken Plate", 1350}, {"Veggie Burrito", 1095},
		{"Fish Tacos", 1195},
	}},
	{"Sides", []seedDish{
		{"Seasoned Fries", 395}, {"Coleslaw", 295}, {"Onion Rings", 450},
	}},
	{"Drinks", []seedDish{
		{"Fountain Soda", 245}, {"Fresh Lemonade", 350}, {"Cold Brew", 425},
	}},
}

// Seeder fills the database with demo data for local development.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Run seeds users, restaurants, menus, and a month of order history. It is a
// no-op when the database already holds users, so re-running is safe.
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.db.NewSelect().Model((*entity.User)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		s.logger.Info("database already seeded; skipping")
		return nil
	}

	fake := faker.New()

	merchant := &entity.User{
		ID:        uuid.NewString(),
		Email:     fake.Internet().Email(),
		Name:      fake.Person().Name(),
		Role:      entity.RoleMerchant,
		CreatedAt: time.Now().UTC(),
	}

	customers := make([]*entity.User, 0, customerCount)
	for i := 0; i < customerCount; i++ {
		customers = append(customers, &entity.User{
			ID:        uuid.NewString(),
			Email:     fake.Internet().Email(),
			Name:      fake.Person().Name(),
			Role:      entity.RoleCustomer,
			CreatedAt: time.Now().UTC(),
		})
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		users := append([]*entity.User{merchant}, customers...)
		if _, err := tx.NewInsert().Model(&users).Exec(ctx); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		totalOrders := 0
		for i := 0; i < restaurantCount; i++ {
			restaurant := &entity.Restaurant{
				ID:        uuid.NewString(),
				OwnerID:   merchant.ID,
				Name:      fake.Company().Name(),
				Address:   fmt.Sprintf("%s, %s", fake.Address().StreetAddress(), fake.Address().City()),
				Active:    true,
				CreatedAt: time.Now().UTC(),
			}
			if _, err := tx.NewInsert().Model(restaurant).Exec(ctx); err != nil {
				return fmt.Errorf("seed restaurant: %w", err)
			}

			items, err := s.seedMenu(ctx, tx, fake, restaurant)
			if err != nil {
				return err
			}

			count, err := s.seedOrders(ctx, tx, fake, restaurant, customers, items)
			if err != nil {
				return err
			}
			totalOrders += count
		}

		s.logger.Info("seed data applied",
			zap.Int("users", len(users)),
			zap.Int("restaurants", restaurantCount),
			zap.Int("orders", totalOrders),
		)
		return nil
	})
}

func (s *Seeder) seedMenu(ctx context.Context, tx bun.Tx, fake faker.Faker, restaurant *entity.Restaurant) ([]*entity.MenuItem, error) {
	var items []*entity.MenuItem

	for position, group := range menuCatalog {
		section := &entity.MenuSection{
			ID:           uuid.NewString(),
			RestaurantID: restaurant.ID,
			Name:         group.section,
			Position:     position,
		}
		if _, err := tx.NewInsert().Model(section).Exec(ctx); err != nil {
			return nil, fmt.Errorf("seed menu section: %w", err)
		}

		for _, dish := range group.dishes {
			item := &entity.MenuItem{
				ID:           uuid.NewString(),
				RestaurantID: restaurant.ID,
				SectionID:    section.ID,
				Name:         dish.name,
				Description:  fake.Lorem().Sentence(8),
				PriceCents:   dish.cents,
				Available:    rand.Float64() > 0.05,
				CreatedAt:    time.Now().UTC(),
			}
			items = append(items, item)
		}
	}

	if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
		return nil, fmt.Errorf("seed menu items: %w", err)
	}
	return items, nil
}

func (s *Seeder) seedOrders(ctx context.Context, tx bun.Tx, fake faker.Faker, restaurant *entity.Restaurant, customers []*entity.User, items []*entity.MenuItem) (int, error) {
	now := time.Now()
	orders := make([]*entity.Order, 0, ordersPerVenue)
	var orderItems []*entity.OrderItem

	for i := 0; i < ordersPerVenue; i++ {
		customer := customers[rand.Intn(len(customers))]
		createdAt := orderTime(now)

		order := &entity.Order{
			ID:               uuid.NewString(),
			CustomerID:       customer.ID,
			RestaurantID:     restaurant.ID,
			Status:           orderStatus(now, createdAt),
			RouteOrigin:      fmt.Sprintf("%s, %s", fake.Address().StreetAddress(), fake.Address().City()),
			RouteDestination: fmt.Sprintf("%s, %s", fake.Address().StreetAddress(), fake.Address().City()),
			PickupEtaMin:     fake.IntBetween(10, 55),
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}

		lineCount := fake.IntBetween(1, 3)
		lines := make([]pricing.Line, 0, lineCount)
		for l := 0; l < lineCount; l++ {
			item := items[rand.Intn(len(items))]
			quantity := fake.IntBetween(1, 3)
			orderItems = append(orderItems, &entity.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    order.ID,
				MenuItemID: item.ID,
				Name:       item.Name,
				PriceCents: item.PriceCents,
				Quantity:   quantity,
			})
			lines = append(lines, pricing.Line{PriceCents: item.PriceCents, Quantity: quantity})
		}
		order.TotalCents = pricing.Calculate(lines).TotalCents
		orders = append(orders, order)
	}

	if _, err := tx.NewInsert().Model(&orders).Exec(ctx); err != nil {
		return 0, fmt.Errorf("seed orders: %w", err)
	}
	if _, err := tx.NewInsert().Model(&orderItems).Exec(ctx); err != nil {
		return 0, fmt.Errorf("seed order items: %w", err)
	}
	return len(orders), nil
}

// orderTime picks a creation time in the seeded history window, biased toward
// service hours.
func orderTime(now time.Time) time.Time {
	day := rand.Intn(historyDays)
	hour := busyHours[rand.Intn(len(busyHours))]
	minute := rand.Intn(60)
	t := now.AddDate(0, 0, -day)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, rand.Intn(60), 0, t.Location())
}

// orderStatus assigns mostly-terminal statuses to the history, leaving only
// same-day orders in flight.
func orderStatus(now, createdAt time.Time) entity.OrderStatus {
	roll := rand.Float64()
	switch {
	case roll < canceledShare:
		return entity.OrderCanceled
	case roll < canceledShare+completedShare || now.Sub(createdAt) > 24*time.Hour:
		return entity.OrderCompleted
	default:
		inflight := []entity.OrderStatus{entity.OrderPending, entity.OrderPreparing, entity.OrderReady}
		return inflight[rand.Intn(len(inflight))]
	}
}
