package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/components"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
	}
	if m.state.Banner != nil {
		sections = append(sections, m.renderBanner())
	}
	sections = append(sections, m.renderBody(dashboard.Route(m.state, m.tab)))
	if m.flash != nil {
		sections = append(sections, m.renderFlash())
	}
	sections = append(sections,
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title and the tab bar.
func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(dashboard.Tabs))
	for i, t := range dashboard.Tabs {
		label := fmt.Sprintf("%d %s", i+1, strings.ToUpper(t.String()[:1])+t.String()[1:])
		if t == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(label))
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("📦 Stockroom"),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)
}

// renderBanner renders the persistent load error. It stays until a load succeeds.
func (m Model) renderBanner() string {
	return m.theme.Banner.
		Width(max(m.width, 20)).
		Render("Showing last known data: " + common.UserMessage(m.state.Banner))
}

func (m Model) renderFlash() string {
	return fmt.Sprintf("%s %s",
		themes.GetNotificationIcon(m.flash.kind),
		m.theme.Notification(m.flash.kind).Render(m.flash.text))
}

// renderBody renders the routed entities for the active tab.
func (m Model) renderBody(v dashboard.View) string {
	var body string

	switch v.Tab {
	case dashboard.TabOverview:
		body = m.renderOverview(v)

	case dashboard.TabInventory:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			m.inventory.View(v.Inventory),
			"",
			m.theme.Subtitle.Render(fmt.Sprintf("Reorder recommendations (%d)", len(v.ReorderRecs))),
			m.renderUrgencies(v.ReorderRecs),
			m.reorders.View(),
		)

	case dashboard.TabPricing:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Subtitle.Render(fmt.Sprintf("Price recommendations (%d)", len(v.PriceRecs))),
			m.prices.View(),
		)

	case dashboard.TabOrders:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.Subtitle.Render(fmt.Sprintf("Orders (%d)", len(v.Orders))),
			m.orders.View(),
		)

	case dashboard.TabForecast:
		body = m.renderForecast(v)
	}

	return m.theme.RoundedBox.
		Width(max(m.width-2, 20)).
		Render(body)
}

// renderUrgencies renders reorder counts per urgency, most urgent first.
func (m Model) renderUrgencies(recs []model.ReorderRecommendation) string {
	counts := make(map[model.Urgency]int, 4)
	for _, r := range recs {
		counts[r.Urgency]++
	}

	parts := make([]string, 0, 4)
	for _, u := range []model.Urgency{model.UrgencyCritical, model.UrgencyHigh, model.UrgencyMedium, model.UrgencyLow} {
		parts = append(parts, m.theme.Urgency(u).Render(fmt.Sprintf("%s %d", u, counts[u])))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderOverview(v dashboard.View) string {
	sum := v.Summary
	counts := []string{
		fmt.Sprintf("%s %d orders (%d provisional)", m.theme.Bold.Render("Orders"), sum.Orders, sum.ProvisionalOrders),
		fmt.Sprintf("%s %d recommendations: %d up, %d down",
			m.theme.Bold.Render("Pricing"), sum.PriceRecs, sum.PriceIncreases, sum.PriceDecreases),
		fmt.Sprintf("%s %d recommendations, %d critical",
			m.theme.Bold.Render("Reorders"), sum.ReorderRecs, sum.CriticalReorders),
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		components.RenderNotifications(m.theme, v.Notifications),
		"",
		m.inventory.View(v.Inventory),
		"",
		strings.Join(counts, "\n"),
	)
}

func (m Model) renderForecast(v dashboard.View) string {
	title := "Demand forecast"
	if v.ForecastKey != nil {
		title = fmt.Sprintf("Demand forecast for product %d at store %d",
			v.ForecastKey.ProductID, v.ForecastKey.StoreID)
	}

	lines := []string{m.theme.Subtitle.Render(title)}
	if peak, ok := model.ForecastPeak(v.Forecast); ok {
		lines = append(lines, m.theme.Normal.Render(fmt.Sprintf("%d days · %.0f units total · peak %.1f on %s",
			len(v.Forecast), model.ForecastTotal(v.Forecast), peak.Forecast, peak.Date)))
	}
	lines = append(lines, m.forecast.View())

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderStatusBar renders activity on the left and freshness on the right.
func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.state.Optimizing:
		left = m.spinner.View() + " Optimizing…"
	case m.state.Loading:
		left = m.spinner.View() + " Loading…"
	case m.state.PendingCount() > 0:
		left = m.spinner.View() + fmt.Sprintf(" %d action(s) in flight", m.state.PendingCount())
	default:
		left = "Ready"
	}

	var right []string
	if r := m.state.LastReconciliation; r.Confirmed+r.Dropped > 0 {
		right = append(right, fmt.Sprintf("reconciled %d/%d", r.Confirmed, r.Confirmed+r.Dropped))
	}
	if m.state.LastLoaded.IsZero() {
		right = append(right, "never updated")
	} else {
		right = append(right, "updated "+m.state.LastLoaded.Local().Format("15:04:05"))
	}
	rightText := strings.Join(right, " · ")

	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(rightText)-2, 1)
	return m.theme.StatusBar.
		Width(max(m.width, 20)).
		Render(" " + left + strings.Repeat(" ", spacing) + rightText)
}
