package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/google/uuid"
)

// DefaultLoadTimeout bounds the aggregate dashboard fetch.
const DefaultLoadTimeout = 30 * time.Second

// Config configures a Dispatcher. Zero values fall back to defaults.
type Config struct {
	Journal      service.Journal
	Logger       *slog.Logger
	Now          func() time.Time
	NewID        func() string
	LoadTimeout  time.Duration
	ForecastDays int
	LeadTimeDays int
}

// Dispatcher performs the remote half of every dashboard operation and
// reports the outcome as an Event. It holds no dashboard state.
type Dispatcher struct {
	backend service.Backend
	journal service.Journal
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	cfg     Config
}

// NewDispatcher creates a dispatcher for backend.
func NewDispatcher(backend service.Backend, cfg Config) (*Dispatcher, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", common.ErrMissingConfig)
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = model.DefaultForecastDays
	}
	if cfg.LeadTimeDays <= 0 {
		cfg.LeadTimeDays = model.DefaultLeadTimeDays
	}

	d := &Dispatcher{
		backend: backend,
		journal: cfg.Journal,
		logger:  cfg.Logger,
		now:     cfg.Now,
		newID:   cfg.NewID,
		cfg:     cfg,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d, nil
}

// FetchDashboard loads the aggregate state, cancelling the request when the
// load timeout expires. It returns LoadSucceeded or LoadFailed.
func (d *Dispatcher) FetchDashboard(ctx context.Context) Event {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.LoadTimeout)
	defer cancel()

	start := d.now()
	snapshot, err := d.backend.Dashboard(ctx)
	if err != nil {
		d.logger.Warn("dashboard load failed", "error", err, "timeout", d.cfg.LoadTimeout)
		return LoadFailed{Err: err}
	}

	d.logger.Debug("dashboard loaded", "duration", d.now().Sub(start))
	return LoadSucceeded{Snapshot: snapshot, At: d.now()}
}

// FetchForecast loads the forecast for key.
func (d *Dispatcher) FetchForecast(ctx context.Context, key model.RecommendationKey) (ForecastLoaded, error) {
	points, err := d.backend.Forecast(ctx, key.ProductID, key.StoreID, d.cfg.ForecastDays)
	if err != nil {
		return ForecastLoaded{}, fmt.Errorf("failed to load forecast for %s: %w", key, err)
	}
	return ForecastLoaded{Key: key, Points: points}, nil
}

// Optimize runs an optimization cycle and blocks until the backend finishes.
func (d *Dispatcher) Optimize(ctx context.Context) OptimizationFinished {
	start := d.now()
	report, err := d.backend.RunOptimization(ctx)
	if err != nil {
		d.logger.Warn("optimization failed", "error", err)
		return OptimizationFinished{Err: fmt.Errorf("optimization failed: %w", err)}
	}

	d.logger.Info("optimization complete",
		"immediate_actions", len(report.ActionPlan.ImmediateActions),
		"scheduled_actions", len(report.ActionPlan.ScheduledActions),
		"duration", d.now().Sub(start))
	return OptimizationFinished{Report: report}
}

// SubmitPriceChange applies rec remotely. It returns PriceChangeApplied or ActionFailed.
func (d *Dispatcher) SubmitPriceChange(ctx context.Context, rec model.PriceRecommendation) Event {
	action := model.NewPriceChangeAction(rec)

	_, err := d.backend.ExecuteAction(ctx, action)
	d.record(ctx, action, err)
	if err != nil {
		return ActionFailed{
			Type: model.ActionPriceChange,
			Key:  rec.Key(),
			Err:  fmt.Errorf("failed to apply price change for %s: %w", rec.Key(), err),
		}
	}

	d.logger.Info("price change applied",
		"product_id", rec.ProductID,
		"store_id", rec.StoreID,
		"recommended_price", rec.RecommendedPrice.String(),
		"priority", action.Priority)
	return PriceChangeApplied{Key: rec.Key()}
}

// SubmitOrder places an order for rec. On success the returned OrderPlaced
// carries a provisional order with a client id; the backend's own id is kept
// alongside when the result reports one.
func (d *Dispatcher) SubmitOrder(ctx context.Context, rec model.ReorderRecommendation) Event {
	idempotencyKey := d.newID()
	delivery := d.now().AddDate(0, 0, d.cfg.LeadTimeDays).Format(model.DateLayout)
	action := model.NewPlaceOrderAction(rec, delivery, d.cfg.LeadTimeDays, idempotencyKey)

	result, err := d.backend.ExecuteAction(ctx, action)
	d.record(ctx, action, err)
	if err != nil {
		return ActionFailed{
			Type: model.ActionPlaceOrder,
			Key:  rec.Key(),
			Err:  fmt.Errorf("failed to place order for %s: %w", rec.Key(), err),
		}
	}

	order := model.Order{
		ID:               "tmp-" + idempotencyKey,
		ProductID:        rec.ProductID,
		StoreID:          rec.StoreID,
		Quantity:         rec.ReorderQuantity,
		ExpectedDelivery: delivery,
		Status:           model.OrderProcessing,
		LeadTime:         float64(d.cfg.LeadTimeDays),
		IdempotencyKey:   idempotencyKey,
		BackendOrderID:   result.OrderID(),
		Provisional:      true,
	}

	d.logger.Info("order placed",
		"product_id", rec.ProductID,
		"store_id", rec.StoreID,
		"quantity", rec.ReorderQuantity,
		"priority", action.Priority,
		"backend_order_id", order.BackendOrderID)
	return OrderPlaced{Key: rec.Key(), Order: order}
}

// RecordIgnore journals a local dismissal.
func (d *Dispatcher) RecordIgnore(ctx context.Context, actionType model.ActionType, key model.RecommendationKey) {
	d.write(ctx, service.JournalEntry{
		Kind:      "ignore_" + string(actionType),
		ProductID: key.ProductID,
		StoreID:   key.StoreID,
		Outcome:   service.OutcomeIgnored,
	})
}

func (d *Dispatcher) record(ctx context.Context, action model.Action, err error) {
	entry := service.JournalEntry{
		Kind:           string(action.Type),
		ProductID:      action.Details.ProductID,
		StoreID:        action.Details.StoreID,
		Priority:       action.Priority,
		IdempotencyKey: action.Details.IdempotencyKey,
		Outcome:        service.OutcomeSucceeded,
	}
	if err != nil {
		entry.Outcome = service.OutcomeFailed
		entry.Error = err.Error()
	}
	d.write(ctx, entry)
}

// write is best effort; a journal failure never fails the action itself.
func (d *Dispatcher) write(ctx context.Context, entry service.JournalEntry) {
	if d.journal == nil {
		return
	}
	entry.CreatedAt = d.now()
	if err := d.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		d.logger.Warn("failed to record action in journal", "kind", entry.Kind, "error", err)
	}
}
