package sheets

import (
	"testing"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkingSet() service.WorkingSet {
	price := func(product int, adjustment string) model.PriceRecommendation {
		return model.PriceRecommendation{
			ProductID:            product,
			StoreID:              1,
			CurrentPrice:         decimal.RequireFromString("4.99"),
			RecommendedPrice:     decimal.RequireFromString("5.49"),
			AdjustmentPercentage: decimal.RequireFromString(adjustment),
			Reason:               "demand",
		}
	}
	reorder := func(product int, urgency model.Urgency) model.ReorderRecommendation {
		return model.ReorderRecommendation{ProductID: product, StoreID: 1, Urgency: urgency, ReorderQuantity: 10}
	}

	return service.WorkingSet{
		GeneratedAt: time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC),
		Inventory: model.InventoryStatus{
			TotalStores:   3,
			TotalProducts: 8,
			StatusCounts:  model.StatusCounts{Healthy: 6, Low: 1, Critical: 2, Stockout: 1},
		},
		PriceRecs: []model.PriceRecommendation{
			price(1, "4"),
			price(2, "-18"),
			price(3, "12.345"),
		},
		ReorderRecs: []model.ReorderRecommendation{
			reorder(1, model.UrgencyLow),
			reorder(2, model.UrgencyCritical),
			reorder(3, model.UrgencyMedium),
		},
		Orders: []model.Order{
			{ID: "ORD-2", ExpectedDelivery: "2026-10-25", Status: model.OrderInTransit},
			{ID: "tmp-1", ExpectedDelivery: "2026-10-21", Status: model.OrderProcessing, Provisional: true},
			{ID: "ORD-1", ExpectedDelivery: "2026-10-01", Status: model.OrderDelivered},
		},
	}
}

func TestBuildTabData(t *testing.T) {
	data := BuildTabData(testWorkingSet())

	assert.Equal(t, 3, data.Summary.TotalStores)
	assert.Equal(t, 2, data.Summary.PriceIncreases)
	assert.Equal(t, 1, data.Summary.PriceDecreases)
	assert.Equal(t, 1, data.Summary.CriticalReorders)
	assert.Equal(t, 2, data.Summary.OpenOrders)
	assert.Equal(t, 1, data.Summary.ProvisionalOrders)
	assert.InDelta(t, 60.0, data.Summary.HealthyPct, 0.001)

	require.Len(t, data.Prices, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{data.Prices[0].ProductID, data.Prices[1].ProductID, data.Prices[2].ProductID})
	assert.Equal(t, model.PriorityHigh, data.Prices[0].Priority)
	assert.Equal(t, model.PriorityMedium, data.Prices[2].Priority)

	require.Len(t, data.Reorders, 3)
	assert.Equal(t, model.UrgencyCritical, data.Reorders[0].Urgency)
	assert.Equal(t, model.UrgencyMedium, data.Reorders[1].Urgency)
	assert.Equal(t, model.UrgencyLow, data.Reorders[2].Urgency)
	assert.Equal(t, model.PriorityHigh, data.Reorders[0].Priority)

	require.Len(t, data.Orders, 3)
	assert.Equal(t, "ORD-1", data.Orders[0].OrderID)
	assert.Equal(t, "tmp-1", data.Orders[1].OrderID)
	assert.True(t, data.Orders[1].Provisional)
}

func TestBuildTabData_Empty(t *testing.T) {
	data := BuildTabData(service.WorkingSet{})
	assert.NotNil(t, data.Prices)
	assert.Empty(t, data.Prices)
	assert.Empty(t, data.Reorders)
	assert.Empty(t, data.Orders)
	assert.Zero(t, data.Summary.HealthyPct)
}

func TestTabValues(t *testing.T) {
	data := BuildTabData(testWorkingSet())

	prices := priceValues(data.Prices)
	require.Len(t, prices, 4)
	assert.Equal(t, "Product", prices[0][0])
	assert.Equal(t, []any{3, 1, 4.99, 5.49, 12.35, "high", "demand"}, prices[2])

	orders := orderValues(data.Orders)
	require.Len(t, orders, 4)
	assert.Equal(t, "yes", orders[2][6])
	assert.Equal(t, "", orders[1][6])

	summary := summaryValues(data.Summary)
	assert.Equal(t, []any{"Stockroom Working Set", "Oct 19, 2026 14:05"}, summary[0])
	assert.Contains(t, summary, []any{"Healthy %", "60.0%"})

	assert.Len(t, reorderValues(nil), 1, "header only")
}
