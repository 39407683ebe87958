// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
)

// DashboardSnapshot is the aggregate state returned by the backend. A nil
// field means the backend omitted it, and the local copy must be kept.
type DashboardSnapshot struct {
	Inventory   *model.InventoryStatus
	Orders      *[]model.Order
	PriceRecs   *[]model.PriceRecommendation
	ReorderRecs *[]model.ReorderRecommendation
	Forecast    *[]model.ForecastPoint
}

// Backend is the remote optimization service the dashboard synchronizes with.
type Backend interface {
	Dashboard(ctx context.Context) (DashboardSnapshot, error)
	Forecast(ctx context.Context, productID, storeID, days int) ([]model.ForecastPoint, error)
	RunOptimization(ctx context.Context) (model.OptimizationReport, error)
	ExecuteAction(ctx context.Context, action model.Action) (model.ActionResult, error)
}

// JournalEntry is one recorded operator action.
type JournalEntry struct {
	CreatedAt      time.Time
	Kind           string
	Priority       model.Priority
	IdempotencyKey string
	Outcome        string
	Error          string
	ID             int64
	ProductID      int
	StoreID        int
}

// Journal outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeIgnored   = "ignored"
)

// Journal records actions taken from the dashboard.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	List(ctx context.Context, limit int) ([]JournalEntry, error)
}

// WorkingSet is the exportable portion of dashboard state.
type WorkingSet struct {
	GeneratedAt time.Time
	Inventory   model.InventoryStatus
	PriceRecs   []model.PriceRecommendation
	ReorderRecs []model.ReorderRecommendation
	Orders      []model.Order
}

// ReportWriter exports a working set to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, set WorkingSet) error
}
