package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/entity"
	"github.com/routedash/routedash/pkg/errorbank"
)

const testRestaurantID = "rest-1"

type stubOrderStore struct {
	listByRestaurant func(ctx context.Context, restaurantID string) ([]*entity.Order, error)
}

func (s *stubOrderStore) Create(context.Context, *entity.Order) error { return nil }

func (s *stubOrderStore) GetForCustomer(context.Context, string, string) (*entity.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) GetForRestaurant(context.Context, string, string) (*entity.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) ListByCustomer(context.Context, string) ([]*entity.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) ListByRestaurant(ctx context.Context, restaurantID string) ([]*entity.Order, error) {
	return s.listByRestaurant(ctx, restaurantID)
}

func (s *stubOrderStore) TransitionStatus(context.Context, string, entity.OrderStatus, entity.OrderStatus) (bool, error) {
	return false, nil
}

func (s *stubOrderStore) UpdateRoute(context.Context, string, entity.RoutePatch) (bool, error) {
	return false, nil
}

func newTestService(orders []*entity.Order, err error) *Service {
	return &Service{
		orders: &stubOrderStore{
			listByRestaurant: func(context.Context, string) ([]*entity.Order, error) {
				return orders, err
			},
		},
		logger:       zap.NewNop(),
		defaultLimit: 10,
		maxLimit:     50,
	}
}

func testOrder(id string, status entity.OrderStatus, total int64, createdAt time.Time, items ...*entity.OrderItem) *entity.Order {
	return &entity.Order{
		ID:           id,
		RestaurantID: testRestaurantID,
		Status:       status,
		TotalCents:   total,
		CreatedAt:    createdAt,
		Items:        items,
	}
}

func testItem(menuItemID, name string, price int64, qty int) *entity.OrderItem {
	return &entity.OrderItem{
		MenuItemID: menuItemID,
		Name:       name,
		PriceCents: price,
		Quantity:   qty,
	}
}

func localTime(day, hour int) time.Time {
	return time.Date(2026, time.August, day, hour, 30, 0, 0, time.Local)
}

func TestSnapshotExcludesCanceledOrders(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1000, localTime(10, 12), testItem("m-1", "Tacos", 500, 2)),
		testOrder("o-2", entity.OrderCompleted, 1000, localTime(11, 12), testItem("m-1", "Tacos", 500, 2)),
		testOrder("o-3", entity.OrderCompleted, 1000, localTime(12, 12), testItem("m-1", "Tacos", 500, 2)),
		testOrder("o-4", entity.OrderCanceled, 5000, localTime(12, 15), testItem("m-2", "Feast", 5000, 1)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(3), snap.TotalOrders)
	assert.Equal(t, int64(3000), snap.TotalRevenueCents)
	assert.Equal(t, int64(1000), snap.AverageOrderCostCents)

	require.Len(t, snap.PopularItems, 1, "canceled order items must not be ranked")
	assert.Equal(t, "m-1", snap.PopularItems[0].MenuItemID)

	assert.Equal(t, int64(0), snap.PeakHours[15].OrderCount, "canceled order must not fill its hour bucket")
	assert.Equal(t, int64(3), snap.PeakHours[12].OrderCount)
}

func TestSnapshotEmptyHistory(t *testing.T) {
	svc := newTestService(nil, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), snap.TotalOrders)
	assert.Equal(t, int64(0), snap.TotalRevenueCents)
	assert.Equal(t, int64(0), snap.AverageOrderCostCents)

	require.Len(t, snap.PeakHours, 24)
	for h, bucket := range snap.PeakHours {
		assert.Equal(t, h, bucket.Hour)
		assert.Equal(t, int64(0), bucket.OrderCount)
		assert.Equal(t, int64(0), bucket.RevenueCents)
	}

	assert.NotNil(t, snap.PopularItems)
	assert.Empty(t, snap.PopularItems)
	assert.Empty(t, snap.DailyRollups)
	assert.Empty(t, snap.WeeklyRollups)
}

func TestSnapshotStoreFailure(t *testing.T) {
	svc := newTestService(nil, errors.New("connection refused"))

	_, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.Error(t, err)
	assert.Equal(t, errorbank.KindInternal, errorbank.From(err).Kind())
}

func TestPopularItemsRankedByQuantity(t *testing.T) {
	// Item A: qty 5 across two orders at $10; item B: qty 10 in one order
	// at $5. Quantity wins over both revenue and order count.
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 2165, localTime(10, 11),
			testItem("item-a", "Burrito", 1000, 2)),
		testOrder("o-2", entity.OrderCompleted, 3247, localTime(11, 11),
			testItem("item-a", "Burrito", 1000, 3)),
		testOrder("o-3", entity.OrderCompleted, 5413, localTime(12, 11),
			testItem("item-b", "Slider", 500, 10)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.PopularItems, 2)

	first, second := snap.PopularItems[0], snap.PopularItems[1]
	assert.Equal(t, "item-b", first.MenuItemID)
	assert.Equal(t, int64(10), first.TotalQuantity)
	assert.Equal(t, int64(1), first.OrderCount)
	assert.Equal(t, int64(5000), first.RevenueCents)

	assert.Equal(t, "item-a", second.MenuItemID)
	assert.Equal(t, "Burrito", second.Name)
	assert.Equal(t, int64(5), second.TotalQuantity)
	assert.Equal(t, int64(2), second.OrderCount)
	assert.Equal(t, int64(5000), second.RevenueCents)
}

func TestPopularItemsCountDistinctOrders(t *testing.T) {
	// The same item on two lines of one order counts that order once.
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 3248, localTime(10, 11),
			testItem("item-a", "Burrito", 1000, 1),
			testItem("item-a", "Burrito", 1000, 2)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.PopularItems, 1)
	assert.Equal(t, int64(1), snap.PopularItems[0].OrderCount)
	assert.Equal(t, int64(3), snap.PopularItems[0].TotalQuantity)
}

func TestPopularItemsTieBreaksOnMenuItemID(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1083, localTime(10, 11),
			testItem("item-z", "Zucchini", 500, 2)),
		testOrder("o-2", entity.OrderCompleted, 1083, localTime(11, 11),
			testItem("item-a", "Arepa", 500, 2)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.PopularItems, 2)
	assert.Equal(t, "item-a", snap.PopularItems[0].MenuItemID)
	assert.Equal(t, "item-z", snap.PopularItems[1].MenuItemID)
}

func TestPopularItemsTruncatedToLimit(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1083, localTime(10, 11),
			testItem("item-a", "Arepa", 100, 3),
			testItem("item-b", "Bao", 100, 2),
			testItem("item-c", "Chaat", 100, 1)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 2)
	require.NoError(t, err)

	require.Len(t, snap.PopularItems, 2)
	assert.Equal(t, "item-a", snap.PopularItems[0].MenuItemID)
	assert.Equal(t, "item-b", snap.PopularItems[1].MenuItemID)
}

func TestPeakHoursBucketing(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1000, localTime(10, 9)),
		testOrder("o-2", entity.OrderCompleted, 1500, localTime(11, 9)),
		testOrder("o-3", entity.OrderCompleted, 2000, localTime(12, 13)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.PeakHours, 24)
	assert.Equal(t, int64(2), snap.PeakHours[9].OrderCount)
	assert.Equal(t, int64(2500), snap.PeakHours[9].RevenueCents)
	assert.Equal(t, int64(1), snap.PeakHours[13].OrderCount)
	assert.Equal(t, int64(2000), snap.PeakHours[13].RevenueCents)
	assert.Equal(t, int64(0), snap.PeakHours[0].OrderCount)

	require.NotEmpty(t, snap.TopPeakHours)
	assert.Equal(t, 9, snap.TopPeakHours[0].Hour)
	assert.Equal(t, 13, snap.TopPeakHours[1].Hour)
}

func TestTopPeakHoursTieBreaksOnEarlierHour(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1000, localTime(10, 17)),
		testOrder("o-2", entity.OrderCompleted, 1000, localTime(10, 8)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	assert.Equal(t, 8, snap.TopPeakHours[0].Hour)
	assert.Equal(t, 17, snap.TopPeakHours[1].Hour)
}

func TestDailyRollups(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 700, localTime(10, 9)),
		testOrder("o-2", entity.OrderCompleted, 800, localTime(10, 19)),
		testOrder("o-3", entity.OrderCompleted, 2000, localTime(12, 12)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.DailyRollups, 2)

	day10 := snap.DailyRollups[0]
	assert.Equal(t, "2026-08-10", day10.Period)
	assert.Equal(t, int64(2), day10.OrderCount)
	assert.Equal(t, int64(1500), day10.TotalRevenueCents)
	assert.Equal(t, int64(750), day10.AverageOrderValueCents)

	day12 := snap.DailyRollups[1]
	assert.Equal(t, "2026-08-12", day12.Period)
	assert.Equal(t, int64(1), day12.OrderCount)
}

func TestDailyRollupsKeepMostRecentWindow(t *testing.T) {
	// 35 consecutive days of orders; only the 30 most recent survive,
	// still sorted ascending.
	var orders []*entity.Order
	start := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 35; i++ {
		orders = append(orders, testOrder(
			"o-"+start.AddDate(0, 0, i).Format("2006-01-02"),
			entity.OrderCompleted,
			1000,
			start.AddDate(0, 0, i),
		))
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.DailyRollups, 30)
	assert.Equal(t, start.AddDate(0, 0, 5).Format("2006-01-02"), snap.DailyRollups[0].Period)
	assert.Equal(t, start.AddDate(0, 0, 34).Format("2006-01-02"), snap.DailyRollups[29].Period)
	assert.True(t, snap.DailyRollups[0].Period < snap.DailyRollups[29].Period)
}

func TestWeeklyRollupsAlignToSunday(t *testing.T) {
	// 2026-08-16 is a Sunday; the 15th falls in the prior week.
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1000, localTime(16, 12)),
		testOrder("o-2", entity.OrderCompleted, 1000, localTime(19, 12)),
		testOrder("o-3", entity.OrderCompleted, 3000, localTime(15, 12)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	require.Len(t, snap.WeeklyRollups, 2)

	prior := snap.WeeklyRollups[0]
	assert.Equal(t, "2026-08-09", prior.Period)
	assert.Equal(t, int64(1), prior.OrderCount)
	assert.Equal(t, int64(3000), prior.TotalRevenueCents)

	current := snap.WeeklyRollups[1]
	assert.Equal(t, "2026-08-16", current.Period)
	assert.Equal(t, int64(2), current.OrderCount)
	assert.Equal(t, int64(2000), current.TotalRevenueCents)
	assert.Equal(t, int64(1000), current.AverageOrderValueCents)
}

func TestAverageRoundsHalfAwayFromZero(t *testing.T) {
	orders := []*entity.Order{
		testOrder("o-1", entity.OrderCompleted, 1000, localTime(10, 12)),
		testOrder("o-2", entity.OrderCompleted, 1001, localTime(10, 14)),
	}
	svc := newTestService(orders, nil)

	snap, err := svc.Snapshot(context.Background(), testRestaurantID, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), snap.AverageOrderCostCents)
	require.Len(t, snap.DailyRollups, 1)
	assert.Equal(t, int64(1001), snap.DailyRollups[0].AverageOrderValueCents)
}

func TestClampLimit(t *testing.T) {
	svc := newTestService(nil, nil)

	assert.Equal(t, 10, svc.clampLimit(0), "zero falls back to the default")
	assert.Equal(t, 10, svc.clampLimit(-3))
	assert.Equal(t, 5, svc.clampLimit(5))
	assert.Equal(t, 50, svc.clampLimit(200), "values above the max are capped")
}

func TestEmptySnapshot(t *testing.T) {
	svc := newTestService(nil, nil)

	snap := svc.EmptySnapshot(testRestaurantID, 0)

	assert.Equal(t, testRestaurantID, snap.RestaurantID)
	assert.Equal(t, int64(0), snap.TotalOrders)
	require.Len(t, snap.PeakHours, 24)
	assert.NotNil(t, snap.PopularItems)
	assert.NotNil(t, snap.DailyRollups)
	assert.NotNil(t, snap.WeeklyRollups)
}
