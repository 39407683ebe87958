package dashboard

import (
	"testing"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []model.Notification
	}{
		{
			name:  "empty state is normal",
			state: State{},
			want:  []model.Notification{{Kind: model.NotificationSuccess, Message: "All systems normal"}},
		},
		{
			name: "healthy only",
			state: State{
				Inventory:    model.InventoryStatus{StatusCounts: model.StatusCounts{Healthy: 12}},
				HasInventory: true,
				Orders:       []model.Order{{ID: "ORD-1", Status: model.OrderDelivered}},
			},
			want: []model.Notification{{Kind: model.NotificationSuccess, Message: "All systems normal"}},
		},
		{
			name: "stockout before critical",
			state: State{
				Inventory: model.InventoryStatus{StatusCounts: model.StatusCounts{Stockout: 2, Critical: 1}},
			},
			want: []model.Notification{
				{Kind: model.NotificationAlert, Message: "2 products are out of stock"},
				{Kind: model.NotificationWarning, Message: "1 product at critical inventory levels"},
			},
		},
		{
			name: "every rule fires in order",
			state: State{
				Inventory: model.InventoryStatus{StatusCounts: model.StatusCounts{Stockout: 1, Critical: 3}},
				PriceRecs: []model.PriceRecommendation{
					priceRec(1, 1, "12"),
					priceRec(2, 1, "4"),
					priceRec(3, 1, "-8"),
					priceRec(4, 1, "0"),
				},
				Orders: []model.Order{
					{ID: "ORD-1", Status: model.OrderProcessing},
					{ID: "ORD-2", Status: model.OrderInTransit},
					{ID: "ORD-3", Status: model.OrderDelivered},
				},
			},
			want: []model.Notification{
				{Kind: model.NotificationAlert, Message: "1 product is out of stock"},
				{Kind: model.NotificationWarning, Message: "3 products at critical inventory levels"},
				{Kind: model.NotificationInfo, Message: "2 price increase recommendations to review"},
				{Kind: model.NotificationInfo, Message: "1 price decrease recommendation to review"},
				{Kind: model.NotificationInfo, Message: "2 pending orders in the pipeline"},
			},
		},
		{
			name: "provisional order counts as pending",
			state: State{
				Orders: []model.Order{{ID: "tmp-1", Status: model.OrderProcessing, Provisional: true}},
			},
			want: []model.Notification{
				{Kind: model.NotificationInfo, Message: "1 pending order in the pipeline"},
			},
		},
		{
			name: "zero adjustment is neither increase nor decrease",
			state: State{
				PriceRecs: []model.PriceRecommendation{priceRec(1, 1, "0")},
			},
			want: []model.Notification{{Kind: model.NotificationSuccess, Message: "All systems normal"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notifications(tt.state))
		})
	}
}

func TestNotifications_SuccessIsExclusive(t *testing.T) {
	s := State{Inventory: model.InventoryStatus{StatusCounts: model.StatusCounts{Critical: 1}}}

	got := Notifications(s)
	require.Len(t, got, 1)
	for _, n := range got {
		assert.NotEqual(t, model.NotificationSuccess, n.Kind)
	}
}
