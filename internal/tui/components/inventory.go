package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// InventoryPanel renders the inventory health overview.
type InventoryPanel struct {
	theme       themes.Theme
	progressBar progress.Model
	width       int
}

// NewInventoryPanel creates an inventory panel.
func NewInventoryPanel(theme themes.Theme) InventoryPanel {
	prog := progress.New(progress.WithSolidFill(string(theme.Success)))
	prog.ShowPercentage = false

	return InventoryPanel{
		theme:       theme,
		progressBar: prog,
		width:       60,
	}
}

// Resize sets the panel width.
func (p *InventoryPanel) Resize(width int) {
	p.width = width
	p.progressBar.Width = min(max(width-20, 10), 40)
}

// View renders inv, or a placeholder when no inventory has been loaded.
func (p InventoryPanel) View(inv *model.InventoryStatus) string {
	if inv == nil {
		return p.theme.Faint.Render("Inventory status not loaded yet")
	}

	healthy := inv.HealthyPercentage()
	header := fmt.Sprintf("%d stores · %d products · %d combinations",
		inv.TotalStores, inv.TotalProducts, inv.ProductStoreCombinations)

	bar := fmt.Sprintf("%s %s",
		p.progressBar.ViewAs(healthy/100),
		p.theme.Bold.Render(fmt.Sprintf("%.1f%% healthy", healthy)),
	)

	counts := []string{
		p.count("Healthy", inv.StatusCounts.Healthy, p.theme.StatusSuccess),
		p.count("Low", inv.StatusCounts.Low, p.theme.StatusInfo),
		p.count("Critical", inv.StatusCounts.Critical, p.theme.StatusWarning),
		p.count("Stockout", inv.StatusCounts.Stockout, p.theme.StatusError),
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.theme.Normal.Render(header),
		bar,
		strings.Join(counts, "   "),
	)
}

func (p InventoryPanel) count(label string, n int, style lipgloss.Style) string {
	if n == 0 {
		style = p.theme.Faint
	}
	return style.Render(fmt.Sprintf("%s %d", label, n))
}

// RenderNotifications renders derived notifications, one per line.
func RenderNotifications(theme themes.Theme, notes []model.Notification) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%s %s",
			themes.GetNotificationIcon(n.Kind),
			theme.Notification(n.Kind).Render(n.Message)))
	}
	return strings.Join(lines, "\n")
}
