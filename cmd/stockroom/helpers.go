package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Veraticus/stockroom/internal/api"
	"github.com/Veraticus/stockroom/internal/config"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/Veraticus/stockroom/internal/storage"
	"github.com/spf13/viper"
)

// newBackend creates the backend every command talks to. Tests replace it.
var newBackend = func(cfg config.Config) (service.Backend, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newClient(cfg config.Config) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:   cfg.Backend.URL,
		UserAgent: "stockroom/" + version,
	})
}

// initStorage opens the action journal with proper path expansion.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}

	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open action journal: %w", err)
	}
	return store, nil
}

// session bundles what a command needs to operate on the dashboard.
type session struct {
	Store      *dashboard.Store
	Dispatcher *dashboard.Dispatcher
	Journal    *storage.SQLiteStorage
	Config     config.Config
}

// Close releases the journal.
func (s *session) Close() {
	if s.Journal != nil {
		if err := s.Journal.Close(); err != nil {
			slog.Warn("failed to close action journal", "error", err)
		}
	}
}

// openSession resolves configuration and wires backend, journal and store.
// A journal that cannot be opened is logged and skipped; actions still run.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{Config: cfg}
	dispatcherCfg := dashboard.Config{
		Logger:       slog.Default(),
		LoadTimeout:  cfg.Backend.LoadTimeout,
		ForecastDays: cfg.ForecastDays,
	}

	journal, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Warn("continuing without action journal", "error", err)
	} else {
		s.Journal = journal
		dispatcherCfg.Journal = journal
	}

	s.Dispatcher, err = dashboard.NewDispatcher(backend, dispatcherCfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = dashboard.NewStore(s.Dispatcher)

	return s, nil
}

// actionContext bounds a mutation by backend.action_timeout. Zero means no bound.
func (s *session) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config.Backend.ActionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Config.Backend.ActionTimeout)
}

// parseKey reads PRODUCT_ID and STORE_ID positional arguments.
func parseKey(args []string) (model.RecommendationKey, error) {
	if len(args) != 2 {
		return model.RecommendationKey{}, fmt.Errorf("expected PRODUCT_ID and STORE_ID, got %d arguments", len(args))
	}
	productID, err := strconv.Atoi(args[0])
	if err != nil || productID <= 0 {
		return model.RecommendationKey{}, fmt.Errorf("invalid product id %q", args[0])
	}
	storeID, err := strconv.Atoi(args[1])
	if err != nil || storeID <= 0 {
		return model.RecommendationKey{}, fmt.Errorf("invalid store id %q", args[1])
	}
	return model.RecommendationKey{ProductID: productID, StoreID: storeID}, nil
}
