package dashboard

import (
	"fmt"

	"github.com/Veraticus/stockroom/internal/model"
)

// Notifications derives the alert list from s. Rules are evaluated in a fixed
// order and every rule whose condition holds contributes one notification;
// the success notice appears only when nothing else does.
func Notifications(s State) []model.Notification {
	var out []model.Notification
	counts := s.Inventory.StatusCounts

	if counts.Stockout > 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationAlert,
			Message: fmt.Sprintf("%s out of stock", plural(counts.Stockout, "product is", "products are")),
		})
	}

	if counts.Critical > 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationWarning,
			Message: fmt.Sprintf("%s at critical inventory levels", plural(counts.Critical, "product", "products")),
		})
	}

	var increases, decreases int
	for _, rec := range s.PriceRecs {
		switch {
		case rec.IsIncrease():
			increases++
		case rec.IsDecrease():
			decreases++
		}
	}

	if increases > 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationInfo,
			Message: fmt.Sprintf("%s to review", plural(increases, "price increase recommendation", "price increase recommendations")),
		})
	}

	if decreases > 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationInfo,
			Message: fmt.Sprintf("%s to review", plural(decreases, "price decrease recommendation", "price decrease recommendations")),
		})
	}

	if pending := countPendingOrders(s.Orders); pending > 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationInfo,
			Message: fmt.Sprintf("%s in the pipeline", plural(pending, "pending order", "pending orders")),
		})
	}

	if len(out) == 0 {
		out = append(out, model.Notification{
			Kind:    model.NotificationSuccess,
			Message: "All systems normal",
		})
	}

	return out
}

func countPendingOrders(orders []model.Order) int {
	n := 0
	for _, o := range orders {
		if o.IsPending() {
			n++
		}
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
