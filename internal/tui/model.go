// Package tui implements the interactive dashboard.
//
// The Model keeps a dashboard.State and advances it with dashboard.Apply as
// events arrive. Remote calls run as tea.Cmds through the dashboard
// Dispatcher and come back as events, so the two-phase update (mark pending,
// call, apply on acknowledgement) happens entirely inside Update.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/components"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	dispatcher *dashboard.Dispatcher
	after      func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	flash      *flash
	theme      themes.Theme
	config     Config
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	inventory  components.InventoryPanel
	prices     components.TableModel
	reorders   components.TableModel
	orders     components.TableModel
	forecast   components.TableModel
	state      dashboard.State
	tab        dashboard.Tab
	flashSeq   int
	width      int
	height     int
	quitting   bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:        ctx,
		dispatcher: cfg.Dispatcher,
		after:      tea.Tick,
		theme:      cfg.Theme,
		config:     cfg,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		spinner:    s,
		inventory:  components.NewInventoryPanel(cfg.Theme),
		prices:     components.NewTable(components.PriceColumns, "No price recommendations", cfg.Theme),
		reorders:   components.NewTable(components.ReorderColumns, "No reorder recommendations", cfg.Theme),
		orders:     components.NewTable(components.OrderColumns, "No orders", cfg.Theme),
		forecast:   components.NewTable(components.ForecastColumns, "No forecast loaded", cfg.Theme),
		tab:        cfg.InitialTab,
		width:      cfg.Width,
		height:     cfg.Height,
	}
	m.handleResize()
	return m
}

// State returns the dashboard state the model is displaying.
func (m Model) State() dashboard.State {
	return m.state
}

// Tab returns the active tab.
func (m Model) Tab() dashboard.Tab {
	return m.tab
}

// Init starts the spinner, the first load and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return refreshMsg{} },
		m.scheduleRefresh(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		cmd := m.beginLoad(msg.scheduled)
		if msg.scheduled {
			return m, tea.Batch(cmd, m.scheduleRefresh())
		}
		return m, cmd

	case flashExpiredMsg:
		if m.flash != nil && m.flash.id == msg.id {
			m.flash = nil
		}
		return m, nil

	case dashboard.LoadSucceeded:
		_ = m.apply(msg)
		if r := m.state.LastReconciliation; r.Lost > 0 {
			return m, m.setFlash(model.NotificationWarning,
				fmt.Sprintf("%d placed order(s) missing from the backend's order list", r.Lost))
		}
		return m, nil

	case dashboard.LoadFailed:
		_ = m.apply(msg)
		return m, nil

	case dashboard.ForecastLoaded:
		_ = m.apply(msg)
		m.tab = dashboard.TabForecast
		return m, nil

	case dashboard.ForecastFailed:
		return m, m.setError(msg.Err)

	case dashboard.OptimizationFinished:
		return m.handleOptimizationFinished(msg)

	case dashboard.PriceChangeApplied:
		_ = m.apply(msg)
		return m, m.setFlash(model.NotificationSuccess, fmt.Sprintf("Price change applied for %s", msg.Key))

	case dashboard.OrderPlaced:
		_ = m.apply(msg)
		return m, m.setFlash(model.NotificationSuccess,
			fmt.Sprintf("Order placed for %s: %s units due %s", msg.Key, model.FormatQuantity(msg.Order.Quantity), msg.Order.ExpectedDelivery))

	case dashboard.ActionFailed:
		_ = m.apply(msg)
		return m, m.setError(msg.Err)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
		return m, nil
	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen
	case key.Matches(msg, m.keymap.NextTab):
		m.tab = m.tab.Next()
		return m, nil
	case key.Matches(msg, m.keymap.PrevTab):
		m.tab = m.tab.Prev()
		return m, nil
	case key.Matches(msg, m.keymap.Tab1):
		m.tab = dashboard.TabOverview
		return m, nil
	case key.Matches(msg, m.keymap.Tab2):
		m.tab = dashboard.TabInventory
		return m, nil
	case key.Matches(msg, m.keymap.Tab3):
		m.tab = dashboard.TabPricing
		return m, nil
	case key.Matches(msg, m.keymap.Tab4):
		m.tab = dashboard.TabOrders
		return m, nil
	case key.Matches(msg, m.keymap.Tab5):
		m.tab = dashboard.TabForecast
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.beginLoad(false)
	case key.Matches(msg, m.keymap.Optimize):
		return m, m.beginOptimization()
	case key.Matches(msg, m.keymap.Forecast):
		return m, m.beginForecast()
	case key.Matches(msg, m.keymap.Ignore):
		return m, m.ignoreSelected()
	case m.tab == dashboard.TabPricing && key.Matches(msg, m.keymap.Apply):
		return m, m.applySelectedPrice()
	case m.tab == dashboard.TabInventory && key.Matches(msg, m.keymap.Order):
		return m, m.orderSelected()
	}

	// Anything else navigates the active table.
	var cmd tea.Cmd
	switch m.tab {
	case dashboard.TabInventory:
		m.reorders, cmd = m.reorders.Update(msg)
	case dashboard.TabPricing:
		m.prices, cmd = m.prices.Update(msg)
	case dashboard.TabOrders:
		m.orders, cmd = m.orders.Update(msg)
	case dashboard.TabForecast:
		m.forecast, cmd = m.forecast.Update(msg)
	}
	return m, cmd
}

// beginLoad starts an aggregate load unless one is already running.
func (m *Model) beginLoad(scheduled bool) tea.Cmd {
	if err := m.apply(dashboard.LoadStarted{}); err != nil {
		if scheduled {
			return nil
		}
		return m.setError(err)
	}
	return m.loadDashboard()
}

func (m *Model) beginOptimization() tea.Cmd {
	if err := m.apply(dashboard.OptimizationStarted{}); err != nil {
		return m.setError(err)
	}
	return tea.Batch(
		m.setFlash(model.NotificationInfo, "Optimization running…"),
		m.runOptimization(),
	)
}

// handleOptimizationFinished ends the run and, on success, starts the reload
// in the same step so no other operation can start in between.
func (m Model) handleOptimizationFinished(msg dashboard.OptimizationFinished) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		_ = m.apply(msg)
		return m, m.setError(msg.Err)
	}

	next, err := dashboard.Apply(m.state, msg)
	if err == nil {
		next, err = dashboard.Apply(next, dashboard.LoadStarted{})
	}
	if err != nil {
		_ = m.apply(msg)
		return m, m.setError(err)
	}
	m.state = next
	m.syncTables()

	plan := msg.Report.ActionPlan
	return m, tea.Batch(
		m.setFlash(model.NotificationSuccess, fmt.Sprintf("Optimization complete: %d immediate, %d scheduled actions",
			len(plan.ImmediateActions), len(plan.ScheduledActions))),
		m.loadDashboard(),
	)
}

func (m *Model) beginForecast() tea.Cmd {
	k, ok := m.selectedKey()
	if !ok {
		return m.setError(errors.New("select a product on the inventory, pricing or orders tab first"))
	}
	return m.loadForecast(k)
}

func (m *Model) applySelectedPrice() tea.Cmd {
	i := m.prices.Cursor()
	if i < 0 || i >= len(m.state.PriceRecs) {
		return nil
	}
	rec := m.state.PriceRecs[i]
	if err := m.apply(dashboard.ActionStarted{Type: model.ActionPriceChange, Key: rec.Key()}); err != nil {
		return m.setError(err)
	}
	return m.submitPriceChange(rec)
}

func (m *Model) orderSelected() tea.Cmd {
	i := m.reorders.Cursor()
	if i < 0 || i >= len(m.state.ReorderRecs) {
		return nil
	}
	rec := m.state.ReorderRecs[i]
	if err := m.apply(dashboard.ActionStarted{Type: model.ActionPlaceOrder, Key: rec.Key()}); err != nil {
		return m.setError(err)
	}
	return m.submitOrder(rec)
}

func (m *Model) ignoreSelected() tea.Cmd {
	var (
		actionType model.ActionType
		event      dashboard.Event
		k          model.RecommendationKey
	)

	switch m.tab {
	case dashboard.TabPricing:
		i := m.prices.Cursor()
		if i < 0 || i >= len(m.state.PriceRecs) {
			return nil
		}
		k = m.state.PriceRecs[i].Key()
		actionType, event = model.ActionPriceChange, dashboard.PriceIgnored{Key: k}
	case dashboard.TabInventory:
		i := m.reorders.Cursor()
		if i < 0 || i >= len(m.state.ReorderRecs) {
			return nil
		}
		k = m.state.ReorderRecs[i].Key()
		actionType, event = model.ActionPlaceOrder, dashboard.ReorderIgnored{Key: k}
	default:
		return nil
	}

	if err := m.apply(event); err != nil {
		return m.setError(err)
	}
	return tea.Batch(
		m.recordIgnore(actionType, k),
		m.setFlash(model.NotificationInfo, fmt.Sprintf("Ignored %s until the next refresh", k)),
	)
}

// selectedKey returns the product/store under the cursor on the active tab.
func (m Model) selectedKey() (model.RecommendationKey, bool) {
	switch m.tab {
	case dashboard.TabPricing:
		if i := m.prices.Cursor(); i >= 0 && i < len(m.state.PriceRecs) {
			return m.state.PriceRecs[i].Key(), true
		}
	case dashboard.TabInventory:
		if i := m.reorders.Cursor(); i >= 0 && i < len(m.state.ReorderRecs) {
			return m.state.ReorderRecs[i].Key(), true
		}
	case dashboard.TabOrders:
		if i := m.orders.Cursor(); i >= 0 && i < len(m.state.Orders) {
			return m.state.Orders[i].Key(), true
		}
	case dashboard.TabForecast:
		if m.state.ForecastKey != nil {
			return *m.state.ForecastKey, true
		}
	}
	return model.RecommendationKey{}, false
}

// apply advances the dashboard state and refreshes the tables. A rejected
// event leaves everything as it was.
func (m *Model) apply(e dashboard.Event) error {
	next, err := dashboard.Apply(m.state, e)
	if err != nil {
		return err
	}
	m.state = next
	m.syncTables()
	return nil
}

func (m *Model) syncTables() {
	m.prices.SetRows(components.PriceRows(m.state.PriceRecs, func(k model.RecommendationKey) bool {
		return m.state.IsPending(model.ActionPriceChange, k)
	}))
	m.reorders.SetRows(components.ReorderRows(m.state.ReorderRecs, func(k model.RecommendationKey) bool {
		return m.state.IsPending(model.ActionPlaceOrder, k)
	}))
	m.orders.SetRows(components.OrderRows(m.state.Orders))
	m.forecast.SetRows(components.ForecastRows(m.state.Forecast, max(m.width/3, 10)))
}

func (m *Model) setFlash(kind model.NotificationKind, text string) tea.Cmd {
	m.flashSeq++
	m.flash = &flash{kind: kind, text: text, id: m.flashSeq}
	return m.expireFlash(m.flashSeq)
}

// setError flashes err. Guard rejections are warnings; anything else is an alert.
func (m *Model) setError(err error) tea.Cmd {
	kind := model.NotificationAlert
	if errors.Is(err, common.ErrBusy) || errors.Is(err, common.ErrActionPending) ||
		errors.Is(err, common.ErrLoadInProgress) || errors.Is(err, common.ErrOptimizationInProgress) {
		kind = model.NotificationWarning
	}
	return m.setFlash(kind, common.UserMessage(err))
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	m.help.Width = m.width

	// Header, tab bar, banner, flash, status bar and help.
	chrome := 7
	if m.help.ShowAll {
		chrome += 4
	}
	body := max(m.height-chrome, 5)

	m.inventory.Resize(m.width)
	m.prices.Resize(m.width, body)
	m.reorders.Resize(m.width, max(body-4, 3))
	m.orders.Resize(m.width, body)
	m.forecast.Resize(m.width, max(body-2, 3))
	m.forecast.SetRows(components.ForecastRows(m.state.Forecast, max(m.width/3, 10)))
}
