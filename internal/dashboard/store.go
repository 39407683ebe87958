package dashboard

import (
	"context"
	"sync"

	"github.com/Veraticus/stockroom/internal/model"
)

// Store owns a State and runs each operation as a two-phase commit: the
// guarding event is applied under the lock, the remote call runs without it,
// and the outcome is applied under the lock again.
type Store struct {
	dispatcher *Dispatcher
	state      State
	mu         sync.Mutex
}

// NewStore creates a store with empty state.
func NewStore(dispatcher *Dispatcher) *Store {
	return &Store{dispatcher: dispatcher}
}

// State returns a snapshot of the current state. The snapshot is safe to
// read after later operations because Apply never edits in place.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) apply(events ...Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	for _, e := range events {
		var err error
		if next, err = Apply(next, e); err != nil {
			return err
		}
	}
	s.state = next
	return nil
}

// Load fetches the aggregate dashboard and replaces local entities. Overlapping
// loads are rejected. On failure every entity keeps its previous value and
// the error is also kept as the banner.
func (s *Store) Load(ctx context.Context) error {
	if err := s.apply(LoadStarted{}); err != nil {
		return err
	}
	return s.finishLoad(ctx)
}

func (s *Store) finishLoad(ctx context.Context) error {
	result := s.dispatcher.FetchDashboard(ctx)
	if err := s.apply(result); err != nil {
		return err
	}
	return Err(result)
}

// LoadForecast replaces the forecast with the series for one product/store.
// It neither checks nor sets the loading flag.
func (s *Store) LoadForecast(ctx context.Context, productID, storeID int) ([]model.ForecastPoint, error) {
	loaded, err := s.dispatcher.FetchForecast(ctx, model.RecommendationKey{ProductID: productID, StoreID: storeID})
	if err != nil {
		return nil, err
	}
	if err := s.apply(loaded); err != nil {
		return nil, err
	}
	return loaded.Points, nil
}

// RunOptimization triggers a backend run, then reloads the dashboard.
// Concurrent runs are rejected rather than queued.
func (s *Store) RunOptimization(ctx context.Context) (model.OptimizationReport, error) {
	if err := s.apply(OptimizationStarted{}); err != nil {
		return model.OptimizationReport{}, err
	}

	finished := s.dispatcher.Optimize(ctx)
	if finished.Err != nil {
		if err := s.apply(finished); err != nil {
			return model.OptimizationReport{}, err
		}
		return model.OptimizationReport{}, finished.Err
	}

	// Finishing and starting the reload happen in one step so nothing can
	// slip in between.
	if err := s.apply(finished, LoadStarted{}); err != nil {
		_ = s.apply(finished)
		return finished.Report, err
	}
	return finished.Report, s.finishLoad(ctx)
}

// ApplyPriceChange submits rec and removes it from local state once the
// backend acknowledges it.
func (s *Store) ApplyPriceChange(ctx context.Context, rec model.PriceRecommendation) error {
	if err := s.apply(ActionStarted{Type: model.ActionPriceChange, Key: rec.Key()}); err != nil {
		return err
	}
	result := s.dispatcher.SubmitPriceChange(ctx, rec)
	if err := s.apply(result); err != nil {
		return err
	}
	return Err(result)
}

// PlaceOrder submits an order for rec. On success the recommendation is
// removed and a provisional order is appended.
func (s *Store) PlaceOrder(ctx context.Context, rec model.ReorderRecommendation) (model.Order, error) {
	if err := s.apply(ActionStarted{Type: model.ActionPlaceOrder, Key: rec.Key()}); err != nil {
		return model.Order{}, err
	}
	result := s.dispatcher.SubmitOrder(ctx, rec)
	if err := s.apply(result); err != nil {
		return model.Order{}, err
	}
	if placed, ok := result.(OrderPlaced); ok {
		return placed.Order, nil
	}
	return model.Order{}, Err(result)
}

// IgnorePrice dismisses a price recommendation locally. A later load may
// bring it back.
func (s *Store) IgnorePrice(ctx context.Context, key model.RecommendationKey) error {
	if err := s.apply(PriceIgnored{Key: key}); err != nil {
		return err
	}
	s.dispatcher.RecordIgnore(ctx, model.ActionPriceChange, key)
	return nil
}

// IgnoreReorder dismisses a reorder recommendation locally. A later load may
// bring it back.
func (s *Store) IgnoreReorder(ctx context.Context, key model.RecommendationKey) error {
	if err := s.apply(ReorderIgnored{Key: key}); err != nil {
		return err
	}
	s.dispatcher.RecordIgnore(ctx, model.ActionPlaceOrder, key)
	return nil
}
