package dto

import "github.com/routedash/routedash/internal/service/analytics"

// PopularItemResponse is one entry of the popularity ranking.
type PopularItemResponse struct {
	MenuItemID    string `json:"menuItemId"`
	Name          string `json:"name"`
	TotalQuantity int64  `json:"totalQuantity"`
	OrderCount    int64  `json:"orderCount"`
	RevenueCents  int64  `json:"revenueCents"`
}

// PeakHourResponse is one hourly ordering bucket.
type PeakHourResponse struct {
	Hour         int   `json:"hour"`
	OrderCount   int64 `json:"orderCount"`
	RevenueCents int64 `json:"revenueCents"`
}

// RollupResponse is a daily or weekly aggregate bucket.
type RollupResponse struct {
	Period                 string `json:"period"`
	OrderCount             int64  `json:"orderCount"`
	TotalRevenueCents      int64  `json:"totalRevenueCents"`
	AverageOrderValueCents int64  `json:"averageOrderValueCents"`
}

// AnalyticsResponse is the full analytics snapshot for one restaurant.
type AnalyticsResponse struct {
	RestaurantID          string                `json:"restaurantId"`
	TotalOrders           int64                 `json:"totalOrders"`
	TotalRevenueCents     int64                 `json:"totalRevenueCents"`
	AverageOrderCostCents int64                 `json:"averageOrderCostCents"`
	PopularItems          []PopularItemResponse `json:"popularItems"`
	PeakHours             []PeakHourResponse    `json:"peakHours"`
	TopPeakHours          []PeakHourResponse    `json:"topPeakHours"`
	DailyRollups          []RollupResponse      `json:"dailyRollups"`
	WeeklyRollups         []RollupResponse      `json:"weeklyRollups"`
}

// NewAnalyticsResponse maps a computed snapshot onto the transport view.
func NewAnalyticsResponse(snap *analytics.Snapshot) AnalyticsResponse {
	out := AnalyticsResponse{
		RestaurantID:          snap.RestaurantID,
		TotalOrders:           snap.TotalOrders,
		TotalRevenueCents:     snap.TotalRevenueCents,
		AverageOrderCostCents: snap.AverageOrderCostCents,
		PopularItems:          make([]PopularItemResponse, 0, len(snap.PopularItems)),
		PeakHours:             make([]PeakHourResponse, 0, len(snap.PeakHours)),
		TopPeakHours:          make([]PeakHourResponse, 0, len(snap.TopPeakHours)),
		DailyRollups:          make([]RollupResponse, 0, len(snap.DailyRollups)),
		WeeklyRollups:         make([]RollupResponse, 0, len(snap.WeeklyRollups)),
	}

	for _, item := range snap.PopularItems {
		out.PopularItems = append(out.PopularItems, PopularItemResponse{
			MenuItemID:    item.MenuItemID,
			Name:          item.Name,
			TotalQuantity: item.TotalQuantity,
			OrderCount:    item.OrderCount,
			RevenueCents:  item.RevenueCents,
		})
	}
	for _, hour := range snap.PeakHours {
		out.PeakHours = append(out.PeakHours, PeakHourResponse(hour))
	}
	for _, hour := range snap.TopPeakHours {
		out.TopPeakHours = append(out.TopPeakHours, PeakHourResponse(hour))
	}
	for _, rollup := range snap.DailyRollups {
		out.DailyRollups = append(out.DailyRollups, RollupResponse(rollup))
	}
	for _, rollup := range snap.WeeklyRollups {
		out.WeeklyRollups = append(out.WeeklyRollups, RollupResponse(rollup))
	}
	return out
}
