package model

import (
	"github.com/shopspring/decimal"
)

// ActionType names a backend mutation.
type ActionType string

// Supported action types.
const (
	ActionPriceChange ActionType = "price_change"
	ActionPlaceOrder  ActionType = "place_order"
)

// DefaultLeadTimeDays is the supplier lead time submitted with orders.
const DefaultLeadTimeDays = 7

// Action is the body of POST /actions/execute.
type Action struct {
	Details  ActionDetails `json:"details"`
	Type     ActionType    `json:"type"`
	Priority Priority      `json:"priority"`
}

// ActionDetails carries the recommendation being acted on plus any
// action-specific fields. Zero-valued optional fields are omitted.
type ActionDetails struct {
	CurrentPrice         *decimal.Decimal `json:"current_price,omitempty"`
	RecommendedPrice     *decimal.Decimal `json:"recommended_price,omitempty"`
	AdjustmentPercentage *decimal.Decimal `json:"adjustment_percentage,omitempty"`
	Reason               string           `json:"reason,omitempty"`
	Urgency              Urgency          `json:"urgency,omitempty"`
	ExpectedDelivery     string           `json:"expected_delivery,omitempty"`
	IdempotencyKey       string           `json:"idempotency_key,omitempty"`
	ProductID            int              `json:"product_id"`
	StoreID              int              `json:"store_id"`
	CurrentStock         float64          `json:"current_stock,omitempty"`
	ExpectedDemand       float64          `json:"expected_demand,omitempty"`
	ReorderQuantity      float64          `json:"reorder_quantity,omitempty"`
	Quantity             float64          `json:"quantity,omitempty"`
	LeadTime             int              `json:"lead_time,omitempty"`
}

// Key returns the product/store the action targets.
func (d ActionDetails) Key() RecommendationKey {
	return RecommendationKey{ProductID: d.ProductID, StoreID: d.StoreID}
}

// NewPriceChangeAction builds the action that applies a price recommendation.
func NewPriceChangeAction(rec PriceRecommendation) Action {
	current, recommended, adjustment := rec.CurrentPrice, rec.RecommendedPrice, rec.AdjustmentPercentage
	return Action{
		Type:     ActionPriceChange,
		Priority: rec.Priority(),
		Details: ActionDetails{
			ProductID:            rec.ProductID,
			StoreID:              rec.StoreID,
			CurrentPrice:         &current,
			RecommendedPrice:     &recommended,
			AdjustmentPercentage: &adjustment,
			Reason:               rec.Reason,
		},
	}
}

// NewPlaceOrderAction builds the action that places an order for a reorder
// recommendation. The idempotency key lets a later reload match the
// provisional local order to the backend's record.
func NewPlaceOrderAction(rec ReorderRecommendation, expectedDelivery string, leadTimeDays int, idempotencyKey string) Action {
	return Action{
		Type:     ActionPlaceOrder,
		Priority: rec.Priority(),
		Details: ActionDetails{
			ProductID:        rec.ProductID,
			StoreID:          rec.StoreID,
			CurrentStock:     rec.CurrentStock,
			ExpectedDemand:   rec.ExpectedDemand,
			ReorderQuantity:  rec.ReorderQuantity,
			Quantity:         rec.ReorderQuantity,
			Urgency:          rec.Urgency,
			LeadTime:         leadTimeDays,
			ExpectedDelivery: expectedDelivery,
			IdempotencyKey:   idempotencyKey,
		},
	}
}

// ActionResult is the backend's report after executing an action plan.
type ActionResult struct {
	ExecutedActions []ExecutedAction `json:"executed_actions"`
	PendingActions  []Action         `json:"pending_actions"`
	FailedActions   []FailedAction   `json:"failed_actions"`
}

// ExecutedAction is an action the backend carried out.
type ExecutedAction struct {
	Result ExecutionOutcome `json:"result"`
	Action Action           `json:"action"`
}

// ExecutionOutcome is the per-action result payload.
type ExecutionOutcome struct {
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Success *bool  `json:"success,omitempty"`
}

// FailedAction is an action the backend rejected.
type FailedAction struct {
	Reason string `json:"reason"`
	Action Action `json:"action"`
}

// OrderID returns the first backend order id reported in the result, if any.
func (r ActionResult) OrderID() string {
	for _, executed := range r.ExecutedActions {
		if executed.Result.OrderID != "" {
			return executed.Result.OrderID
		}
	}
	return ""
}

// ActionPlan is the set of actions an optimization run produced.
type ActionPlan struct {
	ImmediateActions []Action `json:"immediate_actions"`
	ScheduledActions []Action `json:"scheduled_actions"`
}

// OptimizationReport is the response of a completed optimization run.
type OptimizationReport struct {
	ActionPlan ActionPlan   `json:"action_plan"`
	Results    ActionResult `json:"results"`
}
