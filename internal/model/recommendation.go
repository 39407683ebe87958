package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecommendationKey identifies a recommendation by product and store.
// The working set holds at most one recommendation of each kind per key.
type RecommendationKey struct {
	ProductID int
	StoreID   int
}

func (k RecommendationKey) String() string {
	return fmt.Sprintf("%d@%d", k.ProductID, k.StoreID)
}

// Priority is the priority submitted with an action.
type Priority string

// Action priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// priceChangeHighThreshold is the absolute adjustment percentage above which
// a price change is submitted as high priority.
var priceChangeHighThreshold = decimal.NewFromInt(10)

// PriceRecommendation is a suggested price adjustment for one product in one store.
type PriceRecommendation struct {
	Reason               string          `json:"reason"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	RecommendedPrice     decimal.Decimal `json:"recommended_price"`
	AdjustmentPercentage decimal.Decimal `json:"adjustment_percentage"`
	ProductID            int             `json:"product_id"`
	StoreID              int             `json:"store_id"`
}

// Key returns the recommendation's identity.
func (r PriceRecommendation) Key() RecommendationKey {
	return RecommendationKey{ProductID: r.ProductID, StoreID: r.StoreID}
}

// IsIncrease reports whether the recommendation raises the price.
func (r PriceRecommendation) IsIncrease() bool {
	return r.AdjustmentPercentage.IsPositive()
}

// IsDecrease reports whether the recommendation lowers the price.
func (r PriceRecommendation) IsDecrease() bool {
	return r.AdjustmentPercentage.IsNegative()
}

// Priority is high when the absolute adjustment exceeds 10 percent.
func (r PriceRecommendation) Priority() Priority {
	if r.AdjustmentPercentage.Abs().GreaterThan(priceChangeHighThreshold) {
		return PriorityHigh
	}
	return PriorityMedium
}

// Urgency orders reorder recommendations: critical > high > medium > low.
type Urgency string

// Reorder urgencies.
const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Rank returns the ordinal of the urgency; higher is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// UrgencyFromScore maps the optimizer's numeric urgency score onto the enum.
func UrgencyFromScore(score float64) Urgency {
	switch {
	case score >= 10:
		return UrgencyCritical
	case score >= 8:
		return UrgencyHigh
	case score >= 5:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ParseUrgency parses an urgency label case-insensitively.
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(strings.ToLower(strings.TrimSpace(s))); u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return u, nil
	default:
		return "", fmt.Errorf("unknown urgency %q", s)
	}
}

// UnmarshalJSON accepts either an urgency label or a numeric score.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		parsed, err := ParseUrgency(label)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	}

	var score float64
	if err := json.Unmarshal(data, &score); err != nil {
		return fmt.Errorf("urgency must be a label or a number: %s", string(data))
	}
	*u = UrgencyFromScore(score)
	return nil
}

// ReorderRecommendation is a suggested replenishment for one product in one store.
type ReorderRecommendation struct {
	Urgency         Urgency `json:"urgency"`
	ProductID       int     `json:"product_id"`
	StoreID         int     `json:"store_id"`
	CurrentStock    float64 `json:"current_stock"`
	ExpectedDemand  float64 `json:"expected_demand"`
	ReorderQuantity float64 `json:"reorder_quantity"`
}

// Key returns the recommendation's identity.
func (r ReorderRecommendation) Key() RecommendationKey {
	return RecommendationKey{ProductID: r.ProductID, StoreID: r.StoreID}
}

// Priority is high for critical and high urgency, medium otherwise.
func (r ReorderRecommendation) Priority() Priority {
	if r.Urgency == UrgencyCritical || r.Urgency == UrgencyHigh {
		return PriorityHigh
	}
	return PriorityMedium
}

// DedupePriceRecommendations keeps the last recommendation seen for each key,
// preserving the position of its first occurrence.
func DedupePriceRecommendations(recs []PriceRecommendation) []PriceRecommendation {
	return dedupe(recs, PriceRecommendation.Key)
}

// DedupeReorderRecommendations keeps the last recommendation seen for each key,
// preserving the position of its first occurrence.
func DedupeReorderRecommendations(recs []ReorderRecommendation) []ReorderRecommendation {
	return dedupe(recs, ReorderRecommendation.Key)
}

func dedupe[T any](items []T, key func(T) RecommendationKey) []T {
	if items == nil {
		return nil
	}
	index := make(map[RecommendationKey]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
