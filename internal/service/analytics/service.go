package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/config"
	"github.com/routedash/routedash/internal/entity"
	repo "github.com/routedash/routedash/internal/repository/order"
	"github.com/routedash/routedash/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/routedash/routedash/service/analytics")

const (
	dailyWindow  = 30
	weeklyWindow = 12
	dayFormat    = "2006-01-02"
)

// ItemStats is one ranked entry of the popularity list.
type ItemStats struct {
	MenuItemID    string
	Name          string
	TotalQuantity int64
	OrderCount    int64
	RevenueCents  int64
}

// HourStats is one hourly ordering bucket.
type HourStats struct {
	Hour         int
	OrderCount   int64
	RevenueCents int64
}

// PeriodStats is a daily or weekly rollup bucket.
type PeriodStats struct {
	Period                 string
	OrderCount             int64
	TotalRevenueCents      int64
	AverageOrderValueCents int64
}

// Snapshot is the derived analytics view for one restaurant. Nothing in it
// is persisted; every call recomputes it from the order history.
type Snapshot struct {
	RestaurantID          string
	TotalOrders           int64
	TotalRevenueCents     int64
	AverageOrderCostCents int64
	PopularItems          []ItemStats
	PeakHours             []HourStats
	TopPeakHours          []HourStats
	DailyRollups          []PeriodStats
	WeeklyRollups         []PeriodStats
}

// Service computes restaurant analytics from the order history.
type Service struct {
	orders       repo.Store
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders repo.Store
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:       p.Orders,
		logger:       p.Logger,
		defaultLimit: p.Config.Analytics.DefaultLimit,
		maxLimit:     p.Config.Analytics.MaxLimit,
	}
}

// Snapshot scans the restaurant's full order history and derives the
// analytics view. Canceled orders count toward nothing: not revenue, not
// popularity, not the time buckets.
func (s *Service) Snapshot(ctx context.Context, restaurantID string, limit int) (*Snapshot, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalyticsService.Snapshot", trace.WithAttributes(
		attribute.String("restaurant.id", restaurantID),
	))
	defer span.End()

	limit = s.clampLimit(limit)

	orders, err := s.orders.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order history", errorbank.WithCause(err))
	}

	counted := make([]*entity.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == entity.OrderCanceled {
			continue
		}
		counted = append(counted, order)
	}

	snap := &Snapshot{RestaurantID: restaurantID}
	snap.TotalOrders = int64(len(counted))
	for _, order := range counted {
		snap.TotalRevenueCents += order.TotalCents
	}
	if snap.TotalOrders > 0 {
		snap.AverageOrderCostCents = roundDiv(snap.TotalRevenueCents, snap.TotalOrders)
	}

	snap.PopularItems = popularItems(counted, limit)
	snap.PeakHours, snap.TopPeakHours = peakHours(counted, limit)
	snap.DailyRollups = rollups(counted, dayKey, dailyWindow)
	snap.WeeklyRollups = rollups(counted, weekKey, weeklyWindow)

	span.SetAttributes(attribute.Int64("analytics.orders", snap.TotalOrders))
	return snap, nil
}

// EmptySnapshot is the zero-data view served when the read side degrades.
// It keeps the shape guarantees of a real snapshot, including the full set
// of 24 hourly buckets.
func (s *Service) EmptySnapshot(restaurantID string, limit int) *Snapshot {
	snap := &Snapshot{RestaurantID: restaurantID}
	snap.PopularItems = []ItemStats{}
	snap.PeakHours, snap.TopPeakHours = peakHours(nil, s.clampLimit(limit))
	snap.DailyRollups = []PeriodStats{}
	snap.WeeklyRollups = []PeriodStats{}
	return snap
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// popularItems ranks menu items by total quantity sold. Order count tracks
// distinct orders containing the item, not line occurrences. Quantity ties
// break on menu item id so the ranking is deterministic.
func popularItems(orders []*entity.Order, limit int) []ItemStats {
	type accumulator struct {
		stats    ItemStats
		orderIDs map[string]bool
	}

	acc := make(map[string]*accumulator)
	for _, order := range orders {
		for _, item := range order.Items {
			a := acc[item.MenuItemID]
			if a == nil {
				a = &accumulator{
					stats:    ItemStats{MenuItemID: item.MenuItemID},
					orderIDs: make(map[string]bool),
				}
				acc[item.MenuItemID] = a
			}
			if a.stats.Name == "" {
				a.stats.Name = item.Name
			}
			a.stats.TotalQuantity += int64(item.Quantity)
			a.stats.RevenueCents += item.PriceCents * int64(item.Quantity)
			a.orderIDs[order.ID] = true
		}
	}

	ranked := make([]ItemStats, 0, len(acc))
	for _, a := range acc {
		a.stats.OrderCount = int64(len(a.orderIDs))
		ranked = append(ranked, a.stats)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQuantity != ranked[j].TotalQuantity {
			return ranked[i].TotalQuantity > ranked[j].TotalQuantity
		}
		return ranked[i].MenuItemID < ranked[j].MenuItemID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// peakHours buckets orders by the local-time hour of creation. All 24
// buckets are always present. The second return value ranks the buckets
// busiest first, ties broken by the earlier hour.
func peakHours(orders []*entity.Order, limit int) ([]HourStats, []HourStats) {
	var buckets [24]HourStats
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, order := range orders {
		h := order.CreatedAt.Local().Hour()
		buckets[h].OrderCount++
		buckets[h].RevenueCents += order.TotalCents
	}

	all := make([]HourStats, len(buckets))
	copy(all, buckets[:])

	top := make([]HourStats, len(buckets))
	copy(top, buckets[:])
	sort.Slice(top, func(i, j int) bool {
		if top[i].OrderCount != top[j].OrderCount {
			return top[i].OrderCount > top[j].OrderCount
		}
		return top[i].Hour < top[j].Hour
	})
	if len(top) > limit {
		top = top[:limit]
	}

	return all, top
}

// rollups groups orders into period buckets and keeps the most recent
// window of them, sorted ascending by period key.
func rollups(orders []*entity.Order, key func(time.Time) string, window int) []PeriodStats {
	acc := make(map[string]*PeriodStats)
	for _, order := range orders {
		k := key(order.CreatedAt)
		st := acc[k]
		if st == nil {
			st = &PeriodStats{Period: k}
			acc[k] = st
		}
		st.OrderCount++
		st.TotalRevenueCents += order.TotalCents
	}

	out := make([]PeriodStats, 0, len(acc))
	for _, st := range acc {
		st.AverageOrderValueCents = roundDiv(st.TotalRevenueCents, st.OrderCount)
		out = append(out, *st)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	if len(out) > window {
		out = out[len(out)-window:]
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Local().Format(dayFormat)
}

// weekKey folds a timestamp onto the Sunday starting its week.
func weekKey(t time.Time) string {
	local := t.Local()
	start := local.AddDate(0, 0, -int(local.Weekday()))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()).Format(dayFormat)
}

// roundDiv divides rounding half away from zero, matching the tax rounding.
func roundDiv(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return int64(math.Round(float64(total) / float64(count)))
}
