package components

import (
	"strings"
	"testing"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceRec(product, store int, current, recommended, adjustment string) model.PriceRecommendation {
	return model.PriceRecommendation{
		ProductID:            product,
		StoreID:              store,
		CurrentPrice:         decimal.RequireFromString(current),
		RecommendedPrice:     decimal.RequireFromString(recommended),
		AdjustmentPercentage: decimal.RequireFromString(adjustment),
		Reason:               "demand",
	}
}

func TestPriceRows(t *testing.T) {
	recs := []model.PriceRecommendation{
		priceRec(1001, 15, "4.99", "5.49", "10.02"),
		priceRec(1002, 16, "10", "9.5", "-5"),
	}
	pending := func(k model.RecommendationKey) bool {
		return k == model.RecommendationKey{ProductID: 1002, StoreID: 16}
	}

	rows := PriceRows(recs, pending)

	require.Len(t, rows, 2)
	assert.Equal(t, table.Row{"1001", "15", "$4.99", "$5.49", "+10.0%", "demand"}, rows[0])
	assert.Equal(t, table.Row{"1002", "16", "$10.00", "$9.50", "-5.0%", "applying…"}, rows[1])
}

func TestReorderRows(t *testing.T) {
	recs := []model.ReorderRecommendation{
		{ProductID: 1001, StoreID: 15, CurrentStock: 3, ExpectedDemand: 42.25, ReorderQuantity: 312.57, Urgency: model.UrgencyCritical},
	}

	rows := ReorderRows(recs, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, table.Row{"1001", "15", "3", "42.2", "312.57", "critical"}, rows[0])
}

func TestOrderRows(t *testing.T) {
	orders := []model.Order{
		{ID: "ORD-1", ProductID: 1, StoreID: 2, Quantity: 10, ExpectedDelivery: "2026-10-26", Status: model.OrderInTransit},
		{ID: "tmp-abc", ProductID: 3, StoreID: 4, Quantity: 48.25, ExpectedDelivery: "2026-10-27", Status: model.OrderProcessing, Provisional: true},
	}

	rows := OrderRows(orders)

	require.Len(t, rows, 2)
	assert.Equal(t, "ORD-1", rows[0][0])
	assert.Equal(t, "In Transit", rows[0][5])
	assert.Equal(t, "* tmp-abc", rows[1][0])
	assert.Equal(t, "48.25", rows[1][3])
}

func TestForecastRows(t *testing.T) {
	points := []model.ForecastPoint{
		{Date: "2026-10-19", Forecast: 10},
		{Date: "2026-10-20", Forecast: 20},
		{Date: "2026-10-21", Forecast: 0},
	}

	rows := ForecastRows(points, 10)

	require.Len(t, rows, 3)
	assert.Equal(t, strings.Repeat("█", 5), rows[0][2])
	assert.Equal(t, strings.Repeat("█", 10), rows[1][2])
	assert.Empty(t, rows[2][2])
	assert.Equal(t, "20.0", rows[1][1])
}

func TestFormatAdjustment(t *testing.T) {
	tests := []struct {
		adjustment string
		want       string
	}{
		{"15", "+15.0%"},
		{"-12.5", "-12.5%"},
		{"0", "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.adjustment, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAdjustment(priceRec(1, 1, "1", "1", tt.adjustment)))
		})
	}
}

func TestTableModel_Cursor(t *testing.T) {
	m := NewTable(OrderColumns, "No orders", themes.Default)
	assert.Equal(t, -1, m.Cursor())
	assert.Contains(t, m.View(), "No orders")

	m.SetRows(OrderRows([]model.Order{{ID: "a"}, {ID: "b"}, {ID: "c"}}))
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, 3, m.Len())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.Cursor())

	// Shrinking the rows pulls the cursor back into range.
	m.SetRows(OrderRows([]model.Order{{ID: "a"}}))
	assert.Equal(t, 0, m.Cursor())

	m.SetRows(nil)
	assert.Equal(t, -1, m.Cursor())
}

func TestTableModel_Resize(t *testing.T) {
	m := NewTable(PriceColumns, "", themes.Default)
	m.Resize(200, 20)

	cols := m.table.Columns()
	require.Len(t, cols, len(PriceColumns))
	for i, c := range cols {
		assert.GreaterOrEqual(t, c.Width, PriceColumns[i].MinWidth)
	}
}

func TestInventoryPanel_View(t *testing.T) {
	p := NewInventoryPanel(themes.Default)
	p.Resize(80)

	assert.Contains(t, p.View(nil), "not loaded")

	view := p.View(&model.InventoryStatus{
		TotalStores:              2,
		TotalProducts:            3,
		ProductStoreCombinations: 6,
		StatusCounts:             model.StatusCounts{Healthy: 3, Low: 1, Critical: 1, Stockout: 1},
	})
	assert.Contains(t, view, "2 stores")
	assert.Contains(t, view, "50.0% healthy")
	assert.Contains(t, view, "Stockout 1")
}

func TestRenderNotifications(t *testing.T) {
	out := RenderNotifications(themes.Default, []model.Notification{
		{Kind: model.NotificationAlert, Message: "2 products out of stock"},
		{Kind: model.NotificationInfo, Message: "1 pending order"},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2 products out of stock")
	assert.Contains(t, lines[1], "1 pending order")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very...", truncate("a very long reason", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
