package dashboard

import (
	"context"
	"sync"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
)

// fakeBackend is a scriptable service.Backend.
type fakeBackend struct {
	dashboardFn func(ctx context.Context) (service.DashboardSnapshot, error)
	forecastFn  func(ctx context.Context, productID, storeID, days int) ([]model.ForecastPoint, error)
	optimizeFn  func(ctx context.Context) (model.OptimizationReport, error)
	executeFn   func(ctx context.Context, action model.Action) (model.ActionResult, error)

	mu       sync.Mutex
	actions  []model.Action
	optimize int
}

func (f *fakeBackend) Dashboard(ctx context.Context) (service.DashboardSnapshot, error) {
	if f.dashboardFn == nil {
		return service.DashboardSnapshot{}, nil
	}
	return f.dashboardFn(ctx)
}

func (f *fakeBackend) Forecast(ctx context.Context, productID, storeID, days int) ([]model.ForecastPoint, error) {
	if f.forecastFn == nil {
		return []model.ForecastPoint{}, nil
	}
	return f.forecastFn(ctx, productID, storeID, days)
}

func (f *fakeBackend) RunOptimization(ctx context.Context) (model.OptimizationReport, error) {
	f.mu.Lock()
	f.optimize++
	f.mu.Unlock()
	if f.optimizeFn == nil {
		return model.OptimizationReport{}, nil
	}
	return f.optimizeFn(ctx)
}

func (f *fakeBackend) ExecuteAction(ctx context.Context, action model.Action) (model.ActionResult, error) {
	f.mu.Lock()
	f.actions = append(f.actions, action)
	f.mu.Unlock()
	if f.executeFn == nil {
		return model.ActionResult{}, nil
	}
	return f.executeFn(ctx, action)
}

func (f *fakeBackend) submitted() []model.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Action(nil), f.actions...)
}

// memoryJournal is an in-memory service.Journal.
type memoryJournal struct {
	mu      sync.Mutex
	entries []service.JournalEntry
}

func (j *memoryJournal) Record(_ context.Context, entry service.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.ID = int64(len(j.entries) + 1)
	j.entries = append(j.entries, entry)
	return nil
}

func (j *memoryJournal) List(_ context.Context, limit int) ([]service.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit <= 0 || limit > len(j.entries) {
		limit = len(j.entries)
	}
	return append([]service.JournalEntry(nil), j.entries[:limit]...), nil
}

func ptr[T any](v T) *T {
	return &v
}
