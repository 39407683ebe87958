package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/stockroom/internal/api"
	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, backend service.Backend, journal service.Journal) *Store {
	t.Helper()
	dispatcher, err := NewDispatcher(backend, Config{
		Journal: journal,
		Now:     func() time.Time { return testNow },
		NewID:   func() string { return "0f1e2d3c" },
	})
	require.NoError(t, err)
	return NewStore(dispatcher)
}

func sampleSnapshot() service.DashboardSnapshot {
	return service.DashboardSnapshot{
		Inventory: &model.InventoryStatus{
			TotalStores:   2,
			TotalProducts: 2,
			StatusCounts:  model.StatusCounts{Healthy: 2, Critical: 1, Stockout: 1},
		},
		Orders: &[]model.Order{{ID: "ORD-10001", ProductID: 3, StoreID: 2, Quantity: 20, Status: model.OrderInTransit}},
		PriceRecs: &[]model.PriceRecommendation{
			priceRec(1001, 15, "15"),
			priceRec(1002, 15, "5"),
		},
		ReorderRecs: &[]model.ReorderRecommendation{
			reorderRec(1001, 15, model.UrgencyCritical),
			reorderRec(1002, 15, model.UrgencyLow),
		},
		Forecast: &[]model.ForecastPoint{{Date: "2026-10-19", Forecast: 40}},
	}
}

func loadedStore(t *testing.T, backend *fakeBackend, journal service.Journal) *Store {
	t.Helper()
	if backend.dashboardFn == nil {
		backend.dashboardFn = func(context.Context) (service.DashboardSnapshot, error) {
			return sampleSnapshot(), nil
		}
	}
	store := newTestStore(t, backend, journal)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestNewDispatcher_RequiresBackend(t *testing.T) {
	_, err := NewDispatcher(nil, Config{})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestStore_Load(t *testing.T) {
	store := loadedStore(t, &fakeBackend{}, nil)

	s := store.State()
	assert.False(t, s.Loading)
	assert.True(t, s.HasInventory)
	assert.Equal(t, testNow, s.LastLoaded)
	assert.Len(t, s.PriceRecs, 2)
	assert.Len(t, s.ReorderRecs, 2)
	assert.Len(t, s.Orders, 1)
	assert.Len(t, s.Forecast, 1)
}

func TestStore_LoadTimeoutLeavesEntitiesUnchanged(t *testing.T) {
	var slow bool
	var mu sync.Mutex
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hang := slow
		mu.Unlock()
		if hang {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"inventory_overview": {"total_stores": 1, "total_products": 1, "product_store_combinations": 1,
				"status_counts": {"Healthy": 1, "Low": 0, "Critical": 0, "Stockout": 0}},
			"pending_orders": [],
			"price_recommendations": [{"product_id": 1, "store_id": 1, "current_price": 10,
				"recommended_price": 11, "adjustment_percentage": 10, "reason": "demand"}],
			"reorder_recommendations": [],
			"sample_forecast": [{"date": "2026-10-19", "forecast": 5}]
		}`))
	}))
	defer server.Close()
	defer close(release)

	client, err := api.NewClient(api.Config{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	dispatcher, err := NewDispatcher(client, Config{LoadTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	store := NewStore(dispatcher)

	require.NoError(t, store.Load(context.Background()))
	before := store.State()
	require.Len(t, before.PriceRecs, 1)

	mu.Lock()
	slow = true
	mu.Unlock()

	err = store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTimeout(err))

	after := store.State()
	assert.False(t, after.Loading)
	assert.Equal(t, err, after.Banner)
	assert.Equal(t, before.Inventory, after.Inventory)
	assert.Equal(t, before.Orders, after.Orders)
	assert.Equal(t, before.PriceRecs, after.PriceRecs)
	assert.Equal(t, before.ReorderRecs, after.ReorderRecs)
	assert.Equal(t, before.Forecast, after.Forecast)
}

func TestStore_OverlappingLoadRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
			close(entered)
			<-release
			return sampleSnapshot(), nil
		},
	}
	store := newTestStore(t, backend, nil)

	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background()) }()
	<-entered

	assert.True(t, store.State().Loading)
	assert.ErrorIs(t, store.Load(context.Background()), common.ErrLoadInProgress)

	rec, _ := store.State().PriceRec(key(1001, 15))
	assert.ErrorIs(t, store.ApplyPriceChange(context.Background(), rec), common.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, store.State().Loading)
}

func TestStore_OverlappingOptimizationRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		optimizeFn: func(context.Context) (model.OptimizationReport, error) {
			close(entered)
			<-release
			return model.OptimizationReport{}, nil
		},
	}
	store := loadedStore(t, backend, nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.RunOptimization(context.Background())
		done <- err
	}()
	<-entered

	_, err := store.RunOptimization(context.Background())
	assert.ErrorIs(t, err, common.ErrOptimizationInProgress)

	rec, _ := store.State().ReorderRec(key(1001, 15))
	_, err = store.PlaceOrder(context.Background(), rec)
	assert.ErrorIs(t, err, common.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.optimize)

	s := store.State()
	assert.False(t, s.Optimizing)
	assert.False(t, s.Loading)
}

func TestStore_RunOptimizationReloads(t *testing.T) {
	loads := 0
	backend := &fakeBackend{
		dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
			loads++
			if loads == 1 {
				return sampleSnapshot(), nil
			}
			return service.DashboardSnapshot{PriceRecs: &[]model.PriceRecommendation{priceRec(7, 7, "2")}}, nil
		},
		optimizeFn: func(context.Context) (model.OptimizationReport, error) {
			return model.OptimizationReport{ActionPlan: model.ActionPlan{
				ImmediateActions: []model.Action{{Type: model.ActionPriceChange}},
			}}, nil
		},
	}
	store := loadedStore(t, backend, nil)

	report, err := store.RunOptimization(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.ActionPlan.ImmediateActions, 1)
	assert.Equal(t, 2, loads)

	s := store.State()
	require.Len(t, s.PriceRecs, 1)
	assert.Equal(t, key(7, 7), s.PriceRecs[0].Key())
	assert.Len(t, s.ReorderRecs, 2, "absent field keeps local value")
}

func TestStore_RunOptimizationFailureSkipsReload(t *testing.T) {
	loads := 0
	backend := &fakeBackend{
		dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
			loads++
			return sampleSnapshot(), nil
		},
		optimizeFn: func(context.Context) (model.OptimizationReport, error) {
			return model.OptimizationReport{}, errors.New("solver crashed")
		},
	}
	store := loadedStore(t, backend, nil)

	_, err := store.RunOptimization(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver crashed")
	assert.Equal(t, 1, loads)
	assert.False(t, store.State().Optimizing)
	assert.NoError(t, store.State().Banner, "action failures never reach the banner")
}

func TestStore_ApplyPriceChangePriority(t *testing.T) {
	tests := []struct {
		name       string
		adjustment string
		want       model.Priority
	}{
		{name: "large increase", adjustment: "15", want: model.PriorityHigh},
		{name: "small increase", adjustment: "5", want: model.PriorityMedium},
		{name: "large decrease", adjustment: "-12.5", want: model.PriorityHigh},
		{name: "exactly ten", adjustment: "10", want: model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := priceRec(1, 1, tt.adjustment)
			backend := &fakeBackend{
				dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
					return service.DashboardSnapshot{PriceRecs: &[]model.PriceRecommendation{rec}}, nil
				},
			}
			store := loadedStore(t, backend, nil)

			require.NoError(t, store.ApplyPriceChange(context.Background(), rec))

			actions := backend.submitted()
			require.Len(t, actions, 1)
			assert.Equal(t, model.ActionPriceChange, actions[0].Type)
			assert.Equal(t, tt.want, actions[0].Priority)
			assert.Empty(t, store.State().PriceRecs)
		})
	}
}

func TestStore_ApplyPriceChangeFailureKeepsRecommendation(t *testing.T) {
	journal := &memoryJournal{}
	backend := &fakeBackend{
		executeFn: func(context.Context, model.Action) (model.ActionResult, error) {
			return model.ActionResult{}, errors.New("backend rejected")
		},
	}
	store := loadedStore(t, backend, journal)
	rec, ok := store.State().PriceRec(key(1001, 15))
	require.True(t, ok)

	err := store.ApplyPriceChange(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend rejected")

	s := store.State()
	_, ok = s.PriceRec(key(1001, 15))
	assert.True(t, ok)
	assert.Zero(t, s.PendingCount())
	assert.NoError(t, s.Banner)

	require.Len(t, journal.entries, 1)
	assert.Equal(t, service.OutcomeFailed, journal.entries[0].Outcome)
	assert.Contains(t, journal.entries[0].Error, "backend rejected")

	// The key is free again after the failure.
	backend.executeFn = nil
	require.NoError(t, store.ApplyPriceChange(context.Background(), rec))
}

func TestStore_ApplyPriceChangeRemovesOnlyKey(t *testing.T) {
	store := loadedStore(t, &fakeBackend{}, nil)
	rec, _ := store.State().PriceRec(key(1001, 15))

	require.NoError(t, store.ApplyPriceChange(context.Background(), rec))

	s := store.State()
	require.Len(t, s.PriceRecs, 1)
	assert.Equal(t, key(1002, 15), s.PriceRecs[0].Key())
	assert.Len(t, s.ReorderRecs, 2, "reorder recommendation for the same key is untouched")
}

func TestStore_PlaceOrder(t *testing.T) {
	tests := []struct {
		name    string
		urgency model.Urgency
		want    model.Priority
	}{
		{name: "critical", urgency: model.UrgencyCritical, want: model.PriorityHigh},
		{name: "high", urgency: model.UrgencyHigh, want: model.PriorityHigh},
		{name: "medium", urgency: model.UrgencyMedium, want: model.PriorityMedium},
		{name: "low", urgency: model.UrgencyLow, want: model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := reorderRec(1001, 15, tt.urgency)
			journal := &memoryJournal{}
			backend := &fakeBackend{
				dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
					return service.DashboardSnapshot{
						Orders:      &[]model.Order{},
						ReorderRecs: &[]model.ReorderRecommendation{rec},
					}, nil
				},
				executeFn: func(context.Context, model.Action) (model.ActionResult, error) {
					return model.ActionResult{ExecutedActions: []model.ExecutedAction{
						{Result: model.ExecutionOutcome{OrderID: "ORD-12345", Status: "placed"}},
					}}, nil
				},
			}
			store := loadedStore(t, backend, journal)

			order, err := store.PlaceOrder(context.Background(), rec)
			require.NoError(t, err)

			actions := backend.submitted()
			require.Len(t, actions, 1)
			action := actions[0]
			assert.Equal(t, model.ActionPlaceOrder, action.Type)
			assert.Equal(t, tt.want, action.Priority)
			assert.Equal(t, 7, action.Details.LeadTime)
			assert.Equal(t, "2026-10-26", action.Details.ExpectedDelivery)
			assert.Equal(t, "0f1e2d3c", action.Details.IdempotencyKey)

			assert.Equal(t, model.Order{
				ID:               "tmp-0f1e2d3c",
				ProductID:        1001,
				StoreID:          15,
				Quantity:         50,
				ExpectedDelivery: "2026-10-26",
				Status:           model.OrderProcessing,
				LeadTime:         7,
				IdempotencyKey:   "0f1e2d3c",
				BackendOrderID:   "ORD-12345",
				Provisional:      true,
			}, order)

			s := store.State()
			assert.Empty(t, s.ReorderRecs)
			assert.Equal(t, []model.Order{order}, s.Orders)

			require.Len(t, journal.entries, 1)
			assert.Equal(t, "place_order", journal.entries[0].Kind)
			assert.Equal(t, tt.want, journal.entries[0].Priority)
			assert.Equal(t, service.OutcomeSucceeded, journal.entries[0].Outcome)
		})
	}
}

func TestStore_PlaceOrderThenReloadReconciles(t *testing.T) {
	loads := 0
	backend := &fakeBackend{
		dashboardFn: func(context.Context) (service.DashboardSnapshot, error) {
			loads++
			if loads == 1 {
				return sampleSnapshot(), nil
			}
			return service.DashboardSnapshot{Orders: &[]model.Order{
				{ID: "ORD-10001", Status: model.OrderInTransit},
				{ID: "ORD-20000", IdempotencyKey: "0f1e2d3c", Status: model.OrderProcessing},
			}}, nil
		},
	}
	store := loadedStore(t, backend, nil)
	rec, _ := store.State().ReorderRec(key(1001, 15))

	_, err := store.PlaceOrder(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, store.State().ProvisionalOrders(), 1)

	require.NoError(t, store.Load(context.Background()))

	s := store.State()
	assert.Len(t, s.Orders, 2)
	assert.Empty(t, s.ProvisionalOrders())
	assert.Equal(t, Reconciliation{Confirmed: 1}, s.LastReconciliation)
}

func TestStore_PendingKeyRejectsSecondAction(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		executeFn: func(context.Context, model.Action) (model.ActionResult, error) {
			close(entered)
			<-release
			return model.ActionResult{}, nil
		},
	}
	store := loadedStore(t, backend, nil)
	rec, _ := store.State().PriceRec(key(1001, 15))

	done := make(chan error, 1)
	go func() { done <- store.ApplyPriceChange(context.Background(), rec) }()
	<-entered

	assert.ErrorIs(t, store.ApplyPriceChange(context.Background(), rec), common.ErrActionPending)
	assert.ErrorIs(t, store.IgnorePrice(context.Background(), rec.Key()), common.ErrActionPending)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, backend.submitted(), 1)
}

func TestStore_Ignore(t *testing.T) {
	journal := &memoryJournal{}
	backend := &fakeBackend{}
	store := loadedStore(t, backend, journal)

	require.NoError(t, store.IgnorePrice(context.Background(), key(1002, 15)))
	require.NoError(t, store.IgnoreReorder(context.Background(), key(1001, 15)))
	assert.ErrorIs(t, store.IgnorePrice(context.Background(), key(1002, 15)), common.ErrRecommendationNotFound)

	s := store.State()
	require.Len(t, s.PriceRecs, 1)
	assert.Equal(t, key(1001, 15), s.PriceRecs[0].Key())
	require.Len(t, s.ReorderRecs, 1)
	assert.Equal(t, key(1002, 15), s.ReorderRecs[0].Key())
	assert.Empty(t, backend.submitted(), "ignore never calls the backend")

	require.Len(t, journal.entries, 2)
	assert.Equal(t, "ignore_price_change", journal.entries[0].Kind)
	assert.Equal(t, service.OutcomeIgnored, journal.entries[0].Outcome)

	// A reload brings ignored recommendations back.
	require.NoError(t, store.Load(context.Background()))
	assert.Len(t, store.State().PriceRecs, 2)
}

func TestStore_LoadForecast(t *testing.T) {
	var gotDays int
	backend := &fakeBackend{
		forecastFn: func(_ context.Context, productID, storeID, days int) ([]model.ForecastPoint, error) {
			gotDays = days
			return []model.ForecastPoint{{Date: "2026-10-20", Forecast: float64(productID + storeID)}}, nil
		},
	}
	store := loadedStore(t, backend, nil)
	before := store.State()

	points, err := store.LoadForecast(context.Background(), 1002, 15)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultForecastDays, gotDays)
	assert.Equal(t, []model.ForecastPoint{{Date: "2026-10-20", Forecast: 1017}}, points)

	s := store.State()
	assert.Equal(t, points, s.Forecast)
	require.NotNil(t, s.ForecastKey)
	assert.Equal(t, key(1002, 15), *s.ForecastKey)
	assert.Equal(t, before.PriceRecs, s.PriceRecs)

	backend.forecastFn = func(context.Context, int, int, int) ([]model.ForecastPoint, error) {
		return nil, errors.New("no data")
	}
	_, err = store.LoadForecast(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Equal(t, points, store.State().Forecast)
}
