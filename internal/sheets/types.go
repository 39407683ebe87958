package sheets

import (
	"cmp"
	"slices"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/shopspring/decimal"
)

// Tab titles, in the order they appear in the spreadsheet.
const (
	TabSummary  = "Summary"
	TabPrices   = "Prices"
	TabReorders = "Reorders"
	TabOrders   = "Orders"
)

// Tabs lists every tab the writer maintains.
var Tabs = []string{TabSummary, TabPrices, TabReorders, TabOrders}

// SummaryData is the headline block of the Summary tab.
type SummaryData struct {
	GeneratedAt       time.Time
	Counts            model.StatusCounts
	HealthyPct        float64
	TotalStores       int
	TotalProducts     int
	PriceIncreases    int
	PriceDecreases    int
	CriticalReorders  int
	OpenOrders        int
	ProvisionalOrders int
}

// PriceRow represents a single row in the Prices tab.
type PriceRow struct {
	CurrentPrice     decimal.Decimal
	RecommendedPrice decimal.Decimal
	AdjustmentPct    decimal.Decimal
	Priority         model.Priority
	Reason           string
	ProductID        int
	StoreID          int
}

// ReorderRow represents a single row in the Reorders tab.
type ReorderRow struct {
	Urgency         model.Urgency
	Priority        model.Priority
	CurrentStock    float64
	ExpectedDemand  float64
	ProductID       int
	StoreID         int
	ReorderQuantity float64
}

// OrderRow represents a single row in the Orders tab.
type OrderRow struct {
	OrderID          string
	ExpectedDelivery string
	Status           model.OrderStatus
	ProductID        int
	StoreID          int
	Quantity         float64
	Provisional      bool
}

// TabData holds all the data for the complete spreadsheet export.
type TabData struct {
	Summary  SummaryData
	Prices   []PriceRow
	Reorders []ReorderRow
	Orders   []OrderRow
}

// BuildTabData converts a working set into sorted tab rows. Prices are
// ordered by absolute adjustment, reorders by urgency, orders by delivery date.
func BuildTabData(ws service.WorkingSet) TabData {
	data := TabData{
		Summary: SummaryData{
			GeneratedAt:   ws.GeneratedAt,
			Counts:        ws.Inventory.StatusCounts,
			HealthyPct:    ws.Inventory.HealthyPercentage(),
			TotalStores:   ws.Inventory.TotalStores,
			TotalProducts: ws.Inventory.TotalProducts,
		},
		Prices:   make([]PriceRow, 0, len(ws.PriceRecs)),
		Reorders: make([]ReorderRow, 0, len(ws.ReorderRecs)),
		Orders:   make([]OrderRow, 0, len(ws.Orders)),
	}

	for _, rec := range ws.PriceRecs {
		switch {
		case rec.IsIncrease():
			data.Summary.PriceIncreases++
		case rec.IsDecrease():
			data.Summary.PriceDecreases++
		}
		data.Prices = append(data.Prices, PriceRow{
			ProductID:        rec.ProductID,
			StoreID:          rec.StoreID,
			CurrentPrice:     rec.CurrentPrice,
			RecommendedPrice: rec.RecommendedPrice,
			AdjustmentPct:    rec.AdjustmentPercentage,
			Priority:         rec.Priority(),
			Reason:           rec.Reason,
		})
	}
	slices.SortStableFunc(data.Prices, func(a, b PriceRow) int {
		return b.AdjustmentPct.Abs().Cmp(a.AdjustmentPct.Abs())
	})

	for _, rec := range ws.ReorderRecs {
		if rec.Urgency == model.UrgencyCritical {
			data.Summary.CriticalReorders++
		}
		data.Reorders = append(data.Reorders, ReorderRow{
			ProductID:       rec.ProductID,
			StoreID:         rec.StoreID,
			Urgency:         rec.Urgency,
			Priority:        rec.Priority(),
			CurrentStock:    rec.CurrentStock,
			ExpectedDemand:  rec.ExpectedDemand,
			ReorderQuantity: rec.ReorderQuantity,
		})
	}
	slices.SortStableFunc(data.Reorders, func(a, b ReorderRow) int {
		return b.Urgency.Rank() - a.Urgency.Rank()
	})

	for _, o := range ws.Orders {
		if o.IsPending() {
			data.Summary.OpenOrders++
		}
		if o.Provisional {
			data.Summary.ProvisionalOrders++
		}
		data.Orders = append(data.Orders, OrderRow{
			OrderID:          o.ID,
			ProductID:        o.ProductID,
			StoreID:          o.StoreID,
			Quantity:         o.Quantity,
			ExpectedDelivery: o.ExpectedDelivery,
			Status:           o.Status,
			Provisional:      o.Provisional,
		})
	}
	// YYYY-MM-DD sorts lexically.
	slices.SortStableFunc(data.Orders, func(a, b OrderRow) int {
		return cmp.Compare(a.ExpectedDelivery, b.ExpectedDelivery)
	})

	return data
}
