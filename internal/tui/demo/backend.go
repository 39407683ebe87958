// Package demo provides an in-memory optimization backend with generated
// stores, products and recommendations. It drives the dashboard without a
// real server, for demos and tests.
package demo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/shopspring/decimal"
)

// Config controls the generated data set.
type Config struct {
	// Now supplies the clock for delivery dates and forecasts.
	Now func() time.Time
	// Latency delays every call. Calls honor context cancellation while waiting.
	Latency  time.Duration
	Seed     uint64
	Stores   int
	Products int
	// FailActions makes ExecuteAction reject everything.
	FailActions bool
}

// DefaultConfig returns a small deterministic data set.
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		Stores:   4,
		Products: 12,
	}
}

// Backend is an in-memory service.Backend.
type Backend struct {
	rng         *rand.Rand
	now         func() time.Time
	stock       map[model.RecommendationKey]float64
	prices      map[model.RecommendationKey]decimal.Decimal
	priceRecs   []model.PriceRecommendation
	reorderRecs []model.ReorderRecommendation
	orders      []model.Order
	cfg         Config
	mu          sync.Mutex
	nextOrder   int
	runs        int
}

var _ service.Backend = (*Backend)(nil)

// NewBackend generates the initial inventory and a first round of recommendations.
func NewBackend(cfg Config) *Backend {
	def := DefaultConfig()
	if cfg.Stores <= 0 {
		cfg.Stores = def.Stores
	}
	if cfg.Products <= 0 {
		cfg.Products = def.Products
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	b := &Backend{
		rng:       rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed)),
		now:       cfg.Now,
		stock:     make(map[model.RecommendationKey]float64),
		prices:    make(map[model.RecommendationKey]decimal.Decimal),
		cfg:       cfg,
		nextOrder: 1,
	}

	for _, k := range b.keys() {
		b.stock[k] = float64(b.rng.IntN(120))
		cents := 199 + b.rng.IntN(4800)
		b.prices[k] = decimal.New(int64(cents), -2)
	}
	b.optimize()

	return b
}

// Dashboard returns the aggregate state.
func (b *Backend) Dashboard(ctx context.Context) (service.DashboardSnapshot, error) {
	if err := b.wait(ctx); err != nil {
		return service.DashboardSnapshot{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	inventory := b.inventory()
	orders := slices.Clone(b.orders)
	priceRecs := slices.Clone(b.priceRecs)
	reorderRecs := slices.Clone(b.reorderRecs)
	var forecast []model.ForecastPoint
	if keys := b.keys(); len(keys) > 0 {
		forecast = b.forecast(keys[0], model.DefaultForecastDays)
	}

	return service.DashboardSnapshot{
		Inventory:   &inventory,
		Orders:      &orders,
		PriceRecs:   &priceRecs,
		ReorderRecs: &reorderRecs,
		Forecast:    &forecast,
	}, nil
}

// Forecast returns a deterministic weekly demand curve for one product/store.
func (b *Backend) Forecast(ctx context.Context, productID, storeID, days int) ([]model.ForecastPoint, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	k := model.RecommendationKey{ProductID: productID, StoreID: storeID}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.stock[k]; !ok {
		return nil, fmt.Errorf("no forecast for product %d at store %d", productID, storeID)
	}
	return b.forecast(k, days), nil
}

// RunOptimization regenerates every recommendation.
func (b *Backend) RunOptimization(ctx context.Context) (model.OptimizationReport, error) {
	if err := b.wait(ctx); err != nil {
		return model.OptimizationReport{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.optimize()

	var plan model.ActionPlan
	for _, r := range b.reorderRecs {
		action := model.NewPlaceOrderAction(r, "", model.DefaultLeadTimeDays, "")
		if r.Urgency == model.UrgencyCritical || r.Urgency == model.UrgencyHigh {
			plan.ImmediateActions = append(plan.ImmediateActions, action)
		} else {
			plan.ScheduledActions = append(plan.ScheduledActions, action)
		}
	}
	for _, r := range b.priceRecs {
		plan.ScheduledActions = append(plan.ScheduledActions, model.NewPriceChangeAction(r))
	}

	return model.OptimizationReport{ActionPlan: plan}, nil
}

// ExecuteAction applies a price change or places an order.
func (b *Backend) ExecuteAction(ctx context.Context, action model.Action) (model.ActionResult, error) {
	if err := b.wait(ctx); err != nil {
		return model.ActionResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.FailActions {
		return model.ActionResult{}, fmt.Errorf("demo backend rejected %s for %s", action.Type, action.Details.Key())
	}

	k := action.Details.Key()
	if _, ok := b.stock[k]; !ok {
		return model.ActionResult{}, fmt.Errorf("unknown product %d at store %d", k.ProductID, k.StoreID)
	}

	success := true
	executed := model.ExecutedAction{Action: action, Result: model.ExecutionOutcome{Success: &success, Status: "completed"}}

	switch action.Type {
	case model.ActionPriceChange:
		if action.Details.RecommendedPrice != nil {
			b.prices[k] = *action.Details.RecommendedPrice
		}
		b.priceRecs = slices.DeleteFunc(b.priceRecs, func(r model.PriceRecommendation) bool { return r.Key() == k })

	case model.ActionPlaceOrder:
		if i := slices.IndexFunc(b.orders, func(o model.Order) bool {
			return action.Details.IdempotencyKey != "" && o.IdempotencyKey == action.Details.IdempotencyKey
		}); i >= 0 {
			executed.Result.OrderID = b.orders[i].ID
			break
		}

		id := fmt.Sprintf("ORD-%05d", b.nextOrder)
		b.nextOrder++
		b.orders = append(b.orders, model.Order{
			ID:               id,
			ProductID:        k.ProductID,
			StoreID:          k.StoreID,
			Quantity:         action.Details.Quantity,
			ExpectedDelivery: action.Details.ExpectedDelivery,
			Status:           model.OrderProcessing,
			LeadTime:         float64(action.Details.LeadTime),
			IdempotencyKey:   action.Details.IdempotencyKey,
		})
		b.reorderRecs = slices.DeleteFunc(b.reorderRecs, func(r model.ReorderRecommendation) bool { return r.Key() == k })
		executed.Result.OrderID = id

	default:
		return model.ActionResult{}, fmt.Errorf("unsupported action type %q", action.Type)
	}

	return model.ActionResult{ExecutedActions: []model.ExecutedAction{executed}}, nil
}

// Runs returns how many optimizations have completed, including the initial one.
func (b *Backend) Runs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

// wait applies the configured latency.
func (b *Backend) wait(ctx context.Context) error {
	if b.cfg.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.cfg.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) keys() []model.RecommendationKey {
	keys := make([]model.RecommendationKey, 0, b.cfg.Stores*b.cfg.Products)
	for s := range b.cfg.Stores {
		for p := range b.cfg.Products {
			keys = append(keys, model.RecommendationKey{ProductID: 1001 + p, StoreID: 15 + s})
		}
	}
	return keys
}

// optimize rebuilds the recommendation lists from current stock and prices.
// Callers hold mu.
func (b *Backend) optimize() {
	b.runs++
	b.priceRecs = b.priceRecs[:0]
	b.reorderRecs = b.reorderRecs[:0]

	for _, k := range b.keys() {
		demand := b.dailyDemand(k) * model.DefaultLeadTimeDays
		stock := b.stock[k]

		if stock < demand {
			shortfall := demand - stock
			b.reorderRecs = append(b.reorderRecs, model.ReorderRecommendation{
				ProductID:       k.ProductID,
				StoreID:         k.StoreID,
				CurrentStock:    stock,
				ExpectedDemand:  math.Round(demand*10) / 10,
				ReorderQuantity: math.Ceil(shortfall * 1.2),
				Urgency:         model.UrgencyFromScore(shortfall / max(demand, 1) * 12),
			})
		}

		// Roughly a third of combinations get a price suggestion of -15%..+20%.
		if b.rng.IntN(3) == 0 {
			pct := decimal.New(int64(b.rng.IntN(351)-150), -1)
			if pct.IsZero() {
				continue
			}
			current := b.prices[k]
			recommended := current.Mul(decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))).Round(2)
			reason := "Demand above forecast"
			if pct.IsNegative() {
				reason = "Slow sell-through"
			}
			b.priceRecs = append(b.priceRecs, model.PriceRecommendation{
				ProductID:            k.ProductID,
				StoreID:              k.StoreID,
				CurrentPrice:         current,
				RecommendedPrice:     recommended,
				AdjustmentPercentage: pct,
				Reason:               reason,
			})
		}
	}
}

func (b *Backend) inventory() model.InventoryStatus {
	var counts model.StatusCounts
	for _, k := range b.keys() {
		stock, demand := b.stock[k], b.dailyDemand(k)
		switch {
		case stock <= 0:
			counts.Stockout++
		case stock < demand*2:
			counts.Critical++
		case stock < demand*model.DefaultLeadTimeDays:
			counts.Low++
		default:
			counts.Healthy++
		}
	}
	return model.InventoryStatus{
		TotalStores:              b.cfg.Stores,
		TotalProducts:            b.cfg.Products,
		ProductStoreCombinations: b.cfg.Stores * b.cfg.Products,
		StatusCounts:             counts,
	}
}

// dailyDemand is a fixed per-key baseline between 2 and 12 units.
func (b *Backend) dailyDemand(k model.RecommendationKey) float64 {
	return 2 + float64((k.ProductID*31+k.StoreID*17)%11)
}

func (b *Backend) forecast(k model.RecommendationKey, days int) []model.ForecastPoint {
	if days <= 0 {
		days = model.DefaultForecastDays
	}
	base := b.dailyDemand(k)
	start := b.now()

	points := make([]model.ForecastPoint, days)
	for i := range points {
		day := start.AddDate(0, 0, i)
		// Weekly seasonality.
		weekly := 1 + 0.3*math.Sin(2*math.Pi*float64(day.Weekday())/7)
		points[i] = model.ForecastPoint{
			Date:     day.Format(model.DateLayout),
			Forecast: math.Round(base*weekly*10) / 10,
		}
	}
	return points
}
