package tui

import (
	"time"

	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// loadDashboard fetches the aggregate state. The dispatcher applies the load
// timeout and reports LoadSucceeded or LoadFailed.
func (m Model) loadDashboard() tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		return d.FetchDashboard(ctx)
	}
}

// loadForecast fetches the forecast for key.
func (m Model) loadForecast(key model.RecommendationKey) tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		loaded, err := d.FetchForecast(ctx, key)
		if err != nil {
			return dashboard.ForecastFailed{Key: key, Err: err}
		}
		return loaded
	}
}

// runOptimization blocks until the backend finishes its run.
func (m Model) runOptimization() tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		return d.Optimize(ctx)
	}
}

// submitPriceChange sends rec to the backend.
func (m Model) submitPriceChange(rec model.PriceRecommendation) tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		return d.SubmitPriceChange(ctx, rec)
	}
}

// submitOrder places an order for rec.
func (m Model) submitOrder(rec model.ReorderRecommendation) tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		return d.SubmitOrder(ctx, rec)
	}
}

// recordIgnore journals a dismissal. It produces no message.
func (m Model) recordIgnore(actionType model.ActionType, key model.RecommendationKey) tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		d.RecordIgnore(ctx, actionType, key)
		return nil
	}
}

// scheduleRefresh fires the next periodic reload.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.config.RefreshInterval <= 0 {
		return nil
	}
	return m.after(m.config.RefreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{scheduled: true}
	})
}

// expireFlash clears flash id after the configured duration.
func (m Model) expireFlash(id int) tea.Cmd {
	return m.after(m.config.FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}
