package model

// Stock health labels reported by the inventory monitor.
const (
	StockHealthy  = "Healthy"
	StockLow      = "Low"
	StockCritical = "Critical"
	StockStockout = "Stockout"
)

// StatusCounts is the number of product/store combinations in each stock health bucket.
type StatusCounts struct {
	Healthy  int `json:"Healthy"`
	Low      int `json:"Low"`
	Critical int `json:"Critical"`
	Stockout int `json:"Stockout"`
}

// Total returns the number of combinations across all buckets.
func (c StatusCounts) Total() int {
	return c.Healthy + c.Low + c.Critical + c.Stockout
}

// InventoryStatus is the aggregate inventory overview for all stores.
// It is always replaced as a whole; there are no partial updates.
type InventoryStatus struct {
	StatusCounts             StatusCounts `json:"status_counts"`
	TotalStores              int          `json:"total_stores"`
	TotalProducts            int          `json:"total_products"`
	ProductStoreCombinations int          `json:"product_store_combinations"`
}

// HealthyPercentage returns the share of combinations in the Healthy bucket.
func (s InventoryStatus) HealthyPercentage() float64 {
	total := s.StatusCounts.Total()
	if total == 0 {
		return 0
	}
	return float64(s.StatusCounts.Healthy) / float64(total) * 100
}
