package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/charmbracelet/bubbles/table"
)

// Column layouts for each entity table.
var (
	PriceColumns = []Column{
		{Title: "Product", Share: 0.10, MinWidth: 7},
		{Title: "Store", Share: 0.08, MinWidth: 5},
		{Title: "Current", Share: 0.12, MinWidth: 8},
		{Title: "Recommended", Share: 0.14, MinWidth: 11},
		{Title: "Change", Share: 0.10, MinWidth: 8},
		{Title: "Reason", Share: 0.30, MinWidth: 12},
	}

	ReorderColumns = []Column{
		{Title: "Product", Share: 0.10, MinWidth: 7},
		{Title: "Store", Share: 0.08, MinWidth: 5},
		{Title: "Stock", Share: 0.10, MinWidth: 6},
		{Title: "Demand", Share: 0.12, MinWidth: 7},
		{Title: "Reorder", Share: 0.10, MinWidth: 7},
		{Title: "Urgency", Share: 0.12, MinWidth: 8},
	}

	OrderColumns = []Column{
		{Title: "Order", Share: 0.22, MinWidth: 10},
		{Title: "Product", Share: 0.10, MinWidth: 7},
		{Title: "Store", Share: 0.08, MinWidth: 5},
		{Title: "Qty", Share: 0.08, MinWidth: 5},
		{Title: "Delivery", Share: 0.14, MinWidth: 10},
		{Title: "Status", Share: 0.16, MinWidth: 10},
	}

	ForecastColumns = []Column{
		{Title: "Date", Share: 0.15, MinWidth: 10},
		{Title: "Units", Share: 0.10, MinWidth: 7},
		{Title: "", Share: 0.50, MinWidth: 20},
	}
)

// PriceRows builds one row per price recommendation, in slice order.
func PriceRows(recs []model.PriceRecommendation, pending func(model.RecommendationKey) bool) []table.Row {
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		reason := truncate(r.Reason, 40)
		if pending != nil && pending(r.Key()) {
			reason = "applying…"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(r.ProductID),
			strconv.Itoa(r.StoreID),
			"$" + r.CurrentPrice.StringFixed(2),
			"$" + r.RecommendedPrice.StringFixed(2),
			FormatAdjustment(r),
			reason,
		})
	}
	return rows
}

// ReorderRows builds one row per reorder recommendation, in slice order.
func ReorderRows(recs []model.ReorderRecommendation, pending func(model.RecommendationKey) bool) []table.Row {
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		urgency := string(r.Urgency)
		if pending != nil && pending(r.Key()) {
			urgency = "ordering…"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(r.ProductID),
			strconv.Itoa(r.StoreID),
			strconv.FormatFloat(r.CurrentStock, 'f', 0, 64),
			strconv.FormatFloat(r.ExpectedDemand, 'f', 1, 64),
			model.FormatQuantity(r.ReorderQuantity),
			urgency,
		})
	}
	return rows
}

// OrderRows builds one row per order. Provisional orders are marked.
func OrderRows(orders []model.Order) []table.Row {
	rows := make([]table.Row, 0, len(orders))
	for _, o := range orders {
		id := o.ID
		if o.Provisional {
			id = "* " + id
		}
		rows = append(rows, table.Row{
			truncate(id, 24),
			strconv.Itoa(o.ProductID),
			strconv.Itoa(o.StoreID),
			model.FormatQuantity(o.Quantity),
			o.ExpectedDelivery,
			string(o.Status),
		})
	}
	return rows
}

// ForecastRows builds one row per forecast point with a bar scaled to the peak.
func ForecastRows(points []model.ForecastPoint, barWidth int) []table.Row {
	peak, ok := model.ForecastPeak(points)
	rows := make([]table.Row, 0, len(points))
	for _, p := range points {
		bar := ""
		if ok && peak.Forecast > 0 && p.Forecast > 0 {
			bar = strings.Repeat("█", max(1, int(p.Forecast/peak.Forecast*float64(barWidth))))
		}
		rows = append(rows, table.Row{
			p.Date,
			strconv.FormatFloat(p.Forecast, 'f', 1, 64),
			bar,
		})
	}
	return rows
}

// FormatAdjustment renders a signed percentage such as "+12.5%".
func FormatAdjustment(r model.PriceRecommendation) string {
	pct := r.AdjustmentPercentage.StringFixed(1)
	if r.IsIncrease() {
		pct = "+" + pct
	}
	return fmt.Sprintf("%s%%", pct)
}
