package dashboard

import (
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
)

// Event is a discrete input to Apply. Events double as bubbletea messages.
type Event interface {
	event()
}

// LoadStarted marks the beginning of an aggregate load.
type LoadStarted struct{}

// LoadSucceeded carries the backend's aggregate state.
type LoadSucceeded struct {
	At       time.Time
	Snapshot service.DashboardSnapshot
}

// LoadFailed ends an aggregate load without changing any entity.
type LoadFailed struct {
	Err error
}

// ForecastLoaded replaces the forecast series.
type ForecastLoaded struct {
	Points []model.ForecastPoint
	Key    model.RecommendationKey
}

// ForecastFailed reports a forecast fetch that failed. State is unchanged.
type ForecastFailed struct {
	Err error
	Key model.RecommendationKey
}

// OptimizationStarted marks the beginning of a backend optimization run.
type OptimizationStarted struct{}

// OptimizationFinished ends an optimization run. Err is nil on success.
type OptimizationFinished struct {
	Err    error
	Report model.OptimizationReport
}

// ActionStarted marks a remote action on Key as in flight.
type ActionStarted struct {
	Type model.ActionType
	Key  model.RecommendationKey
}

// PriceChangeApplied is the backend's acknowledgement of a price change.
type PriceChangeApplied struct {
	Key model.RecommendationKey
}

// OrderPlaced is the backend's acknowledgement of an order. Order is the
// provisional local record.
type OrderPlaced struct {
	Order model.Order
	Key   model.RecommendationKey
}

// ActionFailed ends an in-flight action without changing any entity.
type ActionFailed struct {
	Err  error
	Type model.ActionType
	Key  model.RecommendationKey
}

// PriceIgnored dismisses a price recommendation locally.
type PriceIgnored struct {
	Key model.RecommendationKey
}

// ReorderIgnored dismisses a reorder recommendation locally.
type ReorderIgnored struct {
	Key model.RecommendationKey
}

func (LoadStarted) event()          {}
func (LoadSucceeded) event()        {}
func (LoadFailed) event()           {}
func (ForecastLoaded) event()       {}
func (ForecastFailed) event()       {}
func (OptimizationStarted) event()  {}
func (OptimizationFinished) event() {}
func (ActionStarted) event()        {}
func (PriceChangeApplied) event()   {}
func (OrderPlaced) event()          {}
func (ActionFailed) event()         {}
func (PriceIgnored) event()         {}
func (ReorderIgnored) event()       {}

// Err returns the failure carried by e, if any.
func Err(e Event) error {
	switch e := e.(type) {
	case LoadFailed:
		return e.Err
	case ForecastFailed:
		return e.Err
	case OptimizationFinished:
		return e.Err
	case ActionFailed:
		return e.Err
	}
	return nil
}
