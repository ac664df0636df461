package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/store"
)

type StatsResponse struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalOrders     int     `json:"totalOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	Range           string  `json:"range"`
}

// GetStats returns revenue and order counts for the back office dashboard.
// The range refers to the current calendar window, not a rolling one:
// range=month means "this calendar month".
// GET /api/v1/admin/stats?range=all|today|month|year
func (s *APIV1Service) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	statsRange := c.QueryParam("range")
	if statsRange == "" {
		statsRange = "all"
	}
	inRange, ok := rangeFilter(statsRange, time.Now())
	if !ok {
		return apierrors.InvalidArgument("invalid range: " + statsRange + " (valid: all, today, month, year)")
	}

	orders, err := s.Store.ListOrders(ctx, &store.FindOrder{})
	if err != nil {
		return apierrors.Internal("failed to list orders", err)
	}

	stats := computeStats(orders, inRange)
	stats.Range = statsRange
	return c.JSON(http.StatusOK, stats)
}

func computeStats(orders []*store.Order, inRange func(time.Time) bool) *StatsResponse {
	stats := &StatsResponse{}
	for _, o := range orders {
		if !inRange(time.Unix(o.CreatedTs, 0)) {
			continue
		}
		stats.TotalRevenue += o.TotalPrice
		stats.TotalOrders++
		if o.Status == store.OrderStatusDelivered {
			stats.DeliveredOrders++
		}
	}
	return stats
}

// rangeFilter compares order times in now's location so the window
// boundaries are consistent.
func rangeFilter(statsRange string, now time.Time) (func(time.Time) bool, bool) {
	switch statsRange {
	case "all":
		return func(time.Time) bool { return true }, true
	case "today":
		return func(t time.Time) bool {
			t = t.In(now.Location())
			return t.Year() == now.Year() && t.YearDay() == now.YearDay()
		}, true
	case "month":
		return func(t time.Time) bool {
			t = t.In(now.Location())
			return t.Year() == now.Year() && t.Month() == now.Month()
		}, true
	case "year":
		return func(t time.Time) bool {
			return t.In(now.Location()).Year() == now.Year()
		}, true
	}
	return nil, false
}
