package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderAction(t *testing.T) {
	rec := ReorderRecommendation{
		ProductID:       1001,
		StoreID:         15,
		CurrentStock:    4,
		ExpectedDemand:  120,
		ReorderQuantity: 150,
		Urgency:         UrgencyCritical,
	}

	action := NewPlaceOrderAction(rec, "2026-10-26", DefaultLeadTimeDays, "key-1")

	assert.Equal(t, ActionPlaceOrder, action.Type)
	assert.Equal(t, PriorityHigh, action.Priority)
	assert.Equal(t, 150.0, action.Details.Quantity)
	assert.Equal(t, 7, action.Details.LeadTime)
	assert.Equal(t, "2026-10-26", action.Details.ExpectedDelivery)
	assert.Equal(t, "key-1", action.Details.IdempotencyKey)
	assert.Equal(t, rec.Key(), action.Details.Key())
}

func TestNewPriceChangeAction_Wire(t *testing.T) {
	rec := PriceRecommendation{
		ProductID:            1001,
		StoreID:              15,
		CurrentPrice:         decimal.RequireFromString("10.00"),
		RecommendedPrice:     decimal.RequireFromString("11.50"),
		AdjustmentPercentage: decimal.RequireFromString("15"),
		Reason:               "High demand",
	}

	body, err := json.Marshal(NewPriceChangeAction(rec))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "price_change", decoded["type"])
	assert.Equal(t, "high", decoded["priority"])

	details, ok := decoded["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1001), details["product_id"])
	assert.Equal(t, "High demand", details["reason"])
	assert.NotContains(t, details, "lead_time")
	assert.NotContains(t, details, "idempotency_key")
}

func TestActionResult_OrderID(t *testing.T) {
	var result ActionResult
	err := json.Unmarshal([]byte(`{
		"executed_actions": [
			{"action": {"type": "price_change"}, "result": {"success": true}},
			{"action": {"type": "place_order"}, "result": {"order_id": "ORD-48213", "status": "placed"}}
		],
		"pending_actions": [],
		"failed_actions": []
	}`), &result)
	require.NoError(t, err)

	assert.Equal(t, "ORD-48213", result.OrderID())
	assert.Empty(t, ActionResult{}.OrderID())
}
