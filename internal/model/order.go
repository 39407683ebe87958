package model

import (
	"math"
	"strconv"
	"time"
)

// OrderStatus is the fulfilment state of an order. Unknown values from the
// backend are preserved as-is.
type OrderStatus string

// Known order statuses.
const (
	OrderProcessing OrderStatus = "Processing"
	OrderInTransit  OrderStatus = "In Transit"
	OrderDelivered  OrderStatus = "Delivered"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Order is a replenishment order. Orders created locally after a successful
// place_order action are Provisional until a full reload replaces them with
// the backend's authoritative list.
type Order struct {
	ID               string      `json:"id"`
	ExpectedDelivery string      `json:"expected_delivery"`
	Status           OrderStatus `json:"status"`
	RecommendedDate  string      `json:"recommended_date,omitempty"`
	IdempotencyKey   string      `json:"idempotency_key,omitempty"`
	BackendOrderID   string      `json:"order_id,omitempty"`
	ProductID        int         `json:"product_id"`
	StoreID          int         `json:"store_id"`
	Quantity         float64     `json:"quantity"`
	LeadTime         float64     `json:"lead_time,omitempty"`
	Provisional      bool        `json:"-"`
}

// Key returns the product/store the order replenishes.
func (o Order) Key() RecommendationKey {
	return RecommendationKey{ProductID: o.ProductID, StoreID: o.StoreID}
}

// IsPending reports whether the order has not been delivered yet.
func (o Order) IsPending() bool {
	return o.Status != OrderDelivered
}

// DeliveryDate parses ExpectedDelivery. It accepts both plain dates and the
// timestamp form some backends emit.
func (o Order) DeliveryDate() (time.Time, error) {
	if t, err := time.Parse(DateLayout, o.ExpectedDelivery); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, o.ExpectedDelivery)
}

// FormatQuantity renders a unit count rounded to two decimals without
// trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}
