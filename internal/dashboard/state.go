// Package dashboard keeps local dashboard state consistent with the
// optimization backend.
//
// State changes only through Apply, a pure transition from (State, Event) to
// State. Remote calls live in Dispatcher, which turns backend responses into
// events. Store combines the two for callers that want a synchronous API;
// the terminal UI drives Apply directly from its update loop.
package dashboard

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/model"
)

// Reconciliation summarizes how provisional orders fared on the last reload.
type Reconciliation struct {
	// Confirmed provisional orders matched a backend order.
	Confirmed int
	// Dropped provisional orders had no backend counterpart. Backends that
	// never list placed orders drop every provisional order this way.
	Dropped int
	// Lost counts dropped orders the backend had acknowledged with an order
	// id. Only these indicate the backend forgot an order.
	Lost int
}

type pendingKey struct {
	Type model.ActionType
	Key  model.RecommendationKey
}

// State is the dashboard's local view of the backend.
type State struct {
	LastLoaded         time.Time
	Banner             error
	pending            map[pendingKey]struct{}
	ForecastKey        *model.RecommendationKey
	Orders             []model.Order
	PriceRecs          []model.PriceRecommendation
	ReorderRecs        []model.ReorderRecommendation
	Forecast           []model.ForecastPoint
	Inventory          model.InventoryStatus
	LastReconciliation Reconciliation
	HasInventory       bool
	Loading            bool
	Optimizing         bool
}

// Busy reports whether destructive actions are currently disabled.
func (s State) Busy() bool {
	return s.Loading || s.Optimizing
}

// IsPending reports whether an action of the given type is in flight for key.
func (s State) IsPending(actionType model.ActionType, key model.RecommendationKey) bool {
	_, ok := s.pending[pendingKey{Type: actionType, Key: key}]
	return ok
}

// PendingCount returns the number of in-flight actions.
func (s State) PendingCount() int {
	return len(s.pending)
}

// PriceRec looks up a price recommendation by key.
func (s State) PriceRec(key model.RecommendationKey) (model.PriceRecommendation, bool) {
	i := slices.IndexFunc(s.PriceRecs, func(r model.PriceRecommendation) bool { return r.Key() == key })
	if i < 0 {
		return model.PriceRecommendation{}, false
	}
	return s.PriceRecs[i], true
}

// ReorderRec looks up a reorder recommendation by key.
func (s State) ReorderRec(key model.RecommendationKey) (model.ReorderRecommendation, bool) {
	i := slices.IndexFunc(s.ReorderRecs, func(r model.ReorderRecommendation) bool { return r.Key() == key })
	if i < 0 {
		return model.ReorderRecommendation{}, false
	}
	return s.ReorderRecs[i], true
}

// ProvisionalOrders returns orders created locally and not yet reconciled.
func (s State) ProvisionalOrders() []model.Order {
	var out []model.Order
	for _, o := range s.Orders {
		if o.Provisional {
			out = append(out, o)
		}
	}
	return out
}

// Apply returns the state that results from e. It never mutates s; slices and
// maps are replaced, not edited in place. A non-nil error means the event was
// rejected and the returned state equals s.
func Apply(s State, e Event) (State, error) {
	switch e := e.(type) {
	case LoadStarted:
		// In-flight actions do not block a load. An order acknowledged after
		// the reload is appended to the fresh list and reconciled on the next one.
		if s.Loading {
			return s, common.ErrLoadInProgress
		}
		if s.Optimizing {
			return s, fmt.Errorf("%w: optimization running", common.ErrBusy)
		}
		s.Loading = true

	case LoadSucceeded:
		s = applySnapshot(s, e)

	case LoadFailed:
		s.Loading = false
		s.Banner = e.Err

	case ForecastLoaded:
		key := e.Key
		s.ForecastKey = &key
		s.Forecast = slices.Clone(e.Points)

	case ForecastFailed:

	case OptimizationStarted:
		if s.Optimizing {
			return s, common.ErrOptimizationInProgress
		}
		if s.Loading {
			return s, fmt.Errorf("%w: load in progress", common.ErrBusy)
		}
		s.Optimizing = true

	case OptimizationFinished:
		s.Optimizing = false

	case ActionStarted:
		if s.Busy() {
			return s, fmt.Errorf("%w: wait for the current refresh to finish", common.ErrBusy)
		}
		if s.IsPending(e.Type, e.Key) {
			return s, fmt.Errorf("%w: %s", common.ErrActionPending, e.Key)
		}
		if !s.hasRecommendation(e.Type, e.Key) {
			return s, fmt.Errorf("%w: %s", common.ErrRecommendationNotFound, e.Key)
		}
		s.pending = withPending(s.pending, pendingKey{Type: e.Type, Key: e.Key})

	case PriceChangeApplied:
		s.pending = withoutPending(s.pending, pendingKey{Type: model.ActionPriceChange, Key: e.Key})
		s.PriceRecs = removeByKey(s.PriceRecs, e.Key, model.PriceRecommendation.Key)

	case OrderPlaced:
		s.pending = withoutPending(s.pending, pendingKey{Type: model.ActionPlaceOrder, Key: e.Key})
		s.ReorderRecs = removeByKey(s.ReorderRecs, e.Key, model.ReorderRecommendation.Key)
		s.Orders = append(slices.Clip(s.Orders), e.Order)

	case ActionFailed:
		s.pending = withoutPending(s.pending, pendingKey{Type: e.Type, Key: e.Key})

	case PriceIgnored:
		if s.IsPending(model.ActionPriceChange, e.Key) {
			return s, fmt.Errorf("%w: %s", common.ErrActionPending, e.Key)
		}
		if _, ok := s.PriceRec(e.Key); !ok {
			return s, fmt.Errorf("%w: %s", common.ErrRecommendationNotFound, e.Key)
		}
		s.PriceRecs = removeByKey(s.PriceRecs, e.Key, model.PriceRecommendation.Key)

	case ReorderIgnored:
		if s.IsPending(model.ActionPlaceOrder, e.Key) {
			return s, fmt.Errorf("%w: %s", common.ErrActionPending, e.Key)
		}
		if _, ok := s.ReorderRec(e.Key); !ok {
			return s, fmt.Errorf("%w: %s", common.ErrRecommendationNotFound, e.Key)
		}
		s.ReorderRecs = removeByKey(s.ReorderRecs, e.Key, model.ReorderRecommendation.Key)

	default:
		return s, fmt.Errorf("unknown dashboard event %T", e)
	}

	return s, nil
}

func (s State) hasRecommendation(actionType model.ActionType, key model.RecommendationKey) bool {
	switch actionType {
	case model.ActionPriceChange:
		_, ok := s.PriceRec(key)
		return ok
	case model.ActionPlaceOrder:
		_, ok := s.ReorderRec(key)
		return ok
	}
	return false
}

// applySnapshot replaces every entity present in the snapshot and keeps the
// rest. Recommendations are de-duplicated by key on the way in.
func applySnapshot(s State, e LoadSucceeded) State {
	snap := e.Snapshot

	s.Loading = false
	s.Banner = nil
	s.LastLoaded = e.At

	if snap.Inventory != nil {
		s.Inventory = *snap.Inventory
		s.HasInventory = true
	}
	if snap.Orders != nil {
		incoming := slices.Clone(*snap.Orders)
		s.LastReconciliation = reconcile(s.ProvisionalOrders(), incoming)
		s.Orders = incoming
	}
	if snap.PriceRecs != nil {
		s.PriceRecs = model.DedupePriceRecommendations(*snap.PriceRecs)
	}
	if snap.ReorderRecs != nil {
		s.ReorderRecs = model.DedupeReorderRecommendations(*snap.ReorderRecs)
	}
	if snap.Forecast != nil {
		s.Forecast = slices.Clone(*snap.Forecast)
		s.ForecastKey = nil
	}

	return s
}

// reconcile matches provisional orders against the backend's list, first by
// backend order id and then by idempotency key.
func reconcile(provisional, incoming []model.Order) Reconciliation {
	var r Reconciliation
	for _, p := range provisional {
		matched := slices.ContainsFunc(incoming, func(o model.Order) bool {
			if p.BackendOrderID != "" && (o.ID == p.BackendOrderID || o.BackendOrderID == p.BackendOrderID) {
				return true
			}
			return p.IdempotencyKey != "" && o.IdempotencyKey == p.IdempotencyKey
		})
		switch {
		case matched:
			r.Confirmed++
		case p.BackendOrderID != "":
			r.Dropped++
			r.Lost++
		default:
			r.Dropped++
		}
	}
	return r
}

func removeByKey[T any](items []T, key model.RecommendationKey, keyOf func(T) model.RecommendationKey) []T {
	return slices.DeleteFunc(slices.Clone(items), func(item T) bool {
		return keyOf(item) == key
	})
}

func withPending(pending map[pendingKey]struct{}, k pendingKey) map[pendingKey]struct{} {
	next := maps.Clone(pending)
	if next == nil {
		next = make(map[pendingKey]struct{}, 1)
	}
	next[k] = struct{}{}
	return next
}

func withoutPending(pending map[pendingKey]struct{}, k pendingKey) map[pendingKey]struct{} {
	if _, ok := pending[k]; !ok {
		return pending
	}
	next := maps.Clone(pending)
	delete(next, k)
	return next
}
