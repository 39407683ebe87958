package dashboard

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stockroom/internal/model"
)

// Tab is a dashboard display mode.
type Tab int

// Tabs in display order.
const (
	TabOverview Tab = iota
	TabInventory
	TabPricing
	TabOrders
	TabForecast
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabOverview, TabInventory, TabPricing, TabOrders, TabForecast}

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "overview"
	case TabInventory:
		return "inventory"
	case TabPricing:
		return "pricing"
	case TabOrders:
		return "orders"
	case TabForecast:
		return "forecast"
	default:
		return fmt.Sprintf("tab(%d)", int(t))
	}
}

// ParseTab parses a tab name.
func ParseTab(name string) (Tab, error) {
	for _, t := range Tabs {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return TabOverview, fmt.Errorf("unknown tab %q", name)
}

// Next returns the tab after t, wrapping around.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Prev returns the tab before t, wrapping around.
func (t Tab) Prev() Tab {
	return Tabs[(int(t)+len(Tabs)-1)%len(Tabs)]
}

// Summary is the overview tab's headline counts.
type Summary struct {
	Orders            int
	ProvisionalOrders int
	PriceRecs         int
	PriceIncreases    int
	PriceDecreases    int
	ReorderRecs       int
	CriticalReorders  int
}

// View is the slice of state a tab displays. Fields a tab does not show are zero.
type View struct {
	Inventory     *model.InventoryStatus
	Summary       *Summary
	ForecastKey   *model.RecommendationKey
	Notifications []model.Notification
	Orders        []model.Order
	PriceRecs     []model.PriceRecommendation
	ReorderRecs   []model.ReorderRecommendation
	Forecast      []model.ForecastPoint
	Tab           Tab
}

// Route selects the entities tab t displays.
func Route(s State, t Tab) View {
	v := View{Tab: t}

	switch t {
	case TabOverview:
		v.Notifications = Notifications(s)
		if s.HasInventory {
			inv := s.Inventory
			v.Inventory = &inv
		}
		summary := summarize(s)
		v.Summary = &summary

	case TabInventory:
		if s.HasInventory {
			inv := s.Inventory
			v.Inventory = &inv
		}
		v.ReorderRecs = s.ReorderRecs

	case TabPricing:
		v.PriceRecs = s.PriceRecs

	case TabOrders:
		v.Orders = s.Orders

	case TabForecast:
		v.Forecast = s.Forecast
		v.ForecastKey = s.ForecastKey
	}

	return v
}

func summarize(s State) Summary {
	sum := Summary{
		Orders:      len(s.Orders),
		PriceRecs:   len(s.PriceRecs),
		ReorderRecs: len(s.ReorderRecs),
	}
	for _, o := range s.Orders {
		if o.Provisional {
			sum.ProvisionalOrders++
		}
	}
	for _, r := range s.PriceRecs {
		if r.IsIncrease() {
			sum.PriceIncreases++
		} else if r.IsDecrease() {
			sum.PriceDecreases++
		}
	}
	for _, r := range s.ReorderRecs {
		if r.Urgency == model.UrgencyCritical {
			sum.CriticalReorders++
		}
	}
	return sum
}
