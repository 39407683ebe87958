package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardFixture = `{
	"inventory_overview": {
		"total_stores": 10,
		"total_products": 50,
		"product_store_combinations": 500,
		"status_counts": {"Healthy": 420, "Low": 50, "Critical": 20, "Stockout": 10}
	},
	"pending_orders": [
		{"product_id": 1001, "store_id": 15, "quantity": 312.57, "recommended_date": "2026-10-20", "lead_time": 7}
	],
	"price_recommendations": [
		{"product_id": 1001, "store_id": 15, "current_price": 19.99, "recommended_price": 22.99,
		 "adjustment_percentage": 15.0075, "reason": "High demand relative to inventory"}
	],
	"reorder_recommendations": [
		{"product_id": 1002, "store_id": 11, "current_stock": 0, "expected_demand": 340.5,
		 "reorder_quantity": 312.57, "urgency": 10}
	],
	"sample_forecast": [
		{"date": "2026-10-19", "forecast": 11.4},
		{"date": "2026-10-20", "forecast": 12.1}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		baseURL    string
		wantHealth string
		wantErr    bool
	}{
		{name: "default", baseURL: "", wantHealth: "http://localhost:5000/health"},
		{name: "trailing slash", baseURL: "https://retail.example.com/api/", wantHealth: "https://retail.example.com/health"},
		{name: "no api suffix", baseURL: "http://backend:8080", wantHealth: "http://backend:8080/health"},
		{name: "bad scheme", baseURL: "ftp://backend", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{BaseURL: tt.baseURL})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHealth, client.healthURL)
		})
	}
}

func TestClient_Dashboard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/dashboard", r.URL.Path)
		_, _ = io.WriteString(w, dashboardFixture)
	})

	snapshot, err := client.Dashboard(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snapshot.Inventory)
	assert.Equal(t, 10, snapshot.Inventory.StatusCounts.Stockout)

	require.NotNil(t, snapshot.Orders)
	require.Len(t, *snapshot.Orders, 1)
	assert.InDelta(t, 312.57, (*snapshot.Orders)[0].Quantity, 1e-9)

	require.NotNil(t, snapshot.PriceRecs)
	rec := (*snapshot.PriceRecs)[0]
	assert.True(t, rec.CurrentPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, model.PriorityHigh, rec.Priority())

	require.NotNil(t, snapshot.ReorderRecs)
	assert.Equal(t, model.UrgencyCritical, (*snapshot.ReorderRecs)[0].Urgency)
	assert.InDelta(t, 312.57, (*snapshot.ReorderRecs)[0].ReorderQuantity, 1e-9)

	require.NotNil(t, snapshot.Forecast)
	assert.Len(t, *snapshot.Forecast, 2)
}

func TestClient_Dashboard_MissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"inventory_overview": {}, "pending_orders": [], "sample_forecast": null}`)
	})

	snapshot, err := client.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snapshot.Inventory, "empty overview is treated as missing")
	require.NotNil(t, snapshot.Orders, "empty list is present")
	assert.Empty(t, *snapshot.Orders)
	assert.Nil(t, snapshot.PriceRecs)
	assert.Nil(t, snapshot.ReorderRecs)
	assert.Nil(t, snapshot.Forecast)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:     "error field with 200",
			status:   http.StatusOK,
			body:     `{"error": "optimizer not initialized"}`,
			wantKind: KindApplication,
			wantMsg:  "optimizer not initialized",
		},
		{
			name:     "error field with 500",
			status:   http.StatusInternalServerError,
			body:     `{"error": "division by zero"}`,
			wantKind: KindTransport,
			wantMsg:  "unexpected status 500: division by zero",
		},
		{
			name:     "non-2xx without error field",
			status:   http.StatusBadGateway,
			body:     `upstream unavailable`,
			wantKind: KindTransport,
			wantMsg:  "unexpected status 502",
		},
		{
			name:     "malformed body",
			status:   http.StatusOK,
			body:     `{"inventory_overview": [1,2]}`,
			wantKind: KindTransport,
			wantMsg:  "failed to parse inventory_overview",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Dashboard(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.False(t, IsTimeout(err))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Dashboard(ctx)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Dashboard(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, IsTimeout(err))
}

func TestClient_Forecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/forecast", r.URL.Path)
		assert.Equal(t, "1001", r.URL.Query().Get("product_id"))
		assert.Equal(t, "15", r.URL.Query().Get("store_id"))
		assert.Equal(t, "14", r.URL.Query().Get("days"))
		_, _ = io.WriteString(w, `[{"date": "2026-10-19", "forecast": 9.5}]`)
	})

	points, err := client.Forecast(context.Background(), 1001, 15, 14)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 9.5, points[0].Forecast, 0.0001)
}

func TestClient_ExecuteAction(t *testing.T) {
	t.Run("sends action body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/actions/execute", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var action model.Action
			require.NoError(t, json.NewDecoder(r.Body).Decode(&action))
			assert.Equal(t, model.ActionPlaceOrder, action.Type)
			assert.Equal(t, model.PriorityHigh, action.Priority)
			assert.Equal(t, "idem-1", action.Details.IdempotencyKey)

			_, _ = io.WriteString(w, `{"executed_actions": [{"action": {}, "result": {"order_id": "ORD-12345", "status": "placed"}}],
				"pending_actions": [], "failed_actions": []}`)
		})

		rec := model.ReorderRecommendation{ProductID: 1, StoreID: 2, ReorderQuantity: 5, Urgency: model.UrgencyHigh}
		result, err := client.ExecuteAction(context.Background(), model.NewPlaceOrderAction(rec, "2026-10-26", 7, "idem-1"))
		require.NoError(t, err)
		assert.Equal(t, "ORD-12345", result.OrderID())
	})

	t.Run("failed actions are application errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"executed_actions": [], "pending_actions": [],
				"failed_actions": [{"action": {}, "reason": "Unknown action type"}]}`)
		})

		_, err := client.ExecuteAction(context.Background(), model.Action{Type: "restock"})
		assert.ErrorIs(t, err, ErrApplication)
		assert.Contains(t, err.Error(), "Unknown action type")
	})
}

func TestClient_RunOptimization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/optimization/run", r.URL.Path)
		_, _ = io.WriteString(w, `{"action_plan": {"immediate_actions": [{"type": "place_order", "details": {"product_id": 1, "store_id": 2,
			"current_stock": 0, "expected_demand": 312.57, "reorder_quantity": 312.57, "quantity": 312.57, "urgency": "critical"}, "priority": "high"}],
			"scheduled_actions": []}, "results": {"executed_actions": [], "pending_actions": [], "failed_actions": []}}`)
	})

	report, err := client.RunOptimization(context.Background())
	require.NoError(t, err)
	require.Len(t, report.ActionPlan.ImmediateActions, 1)
	assert.Empty(t, report.ActionPlan.ScheduledActions)

	details := report.ActionPlan.ImmediateActions[0].Details
	assert.InDelta(t, 312.57, details.Quantity, 1e-9)
	assert.InDelta(t, 312.57, details.ReorderQuantity, 1e-9)
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status": "ok", "message": "API server is running"}`)
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}
