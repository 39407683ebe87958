package dashboard

import (
	"slices"
	"time"

	"github.com/Veraticus/stockroom/internal/service"
)

// WorkingSet copies the exportable entities out of s.
func WorkingSet(s State, now time.Time) service.WorkingSet {
	return service.WorkingSet{
		GeneratedAt: now,
		Inventory:   s.Inventory,
		PriceRecs:   slices.Clone(s.PriceRecs),
		ReorderRecs: slices.Clone(s.ReorderRecs),
		Orders:      slices.Clone(s.Orders),
	}
}
