// Package api is the HTTP client for the inventory optimization backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
)

// DefaultBaseURL is where the backend listens in a local setup.
const DefaultBaseURL = "http://localhost:5000/api"

// maxErrorBody bounds how much of a failed response is kept in an error.
const maxErrorBody = 512

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	// HealthURL defaults to BaseURL's server root plus /health.
	HealthURL string
	UserAgent string
}

// Client talks to the backend. It never retries; every failure is returned
// to the caller as an *Error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	healthURL  string
	userAgent  string
}

var _ service.Backend = (*Client)(nil)

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", base)
	}
	base = strings.TrimRight(base, "/")

	health := cfg.HealthURL
	if health == "" {
		health = strings.TrimSuffix(base, "/api") + "/health"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadlines come from the caller's context; the loader bounds the
		// aggregate fetch and optimization runs may legitimately take minutes.
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "stockroom"
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		healthURL:  health,
		userAgent:  userAgent,
	}, nil
}

// dashboardResponse is the wire shape of GET /dashboard. Fields are raw so a
// missing key can be told apart from an empty value.
type dashboardResponse struct {
	InventoryOverview      json.RawMessage `json:"inventory_overview"`
	PendingOrders          json.RawMessage `json:"pending_orders"`
	PriceRecommendations   json.RawMessage `json:"price_recommendations"`
	ReorderRecommendations json.RawMessage `json:"reorder_recommendations"`
	SampleForecast         json.RawMessage `json:"sample_forecast"`
}

// Dashboard fetches the aggregate dashboard state.
func (c *Client) Dashboard(ctx context.Context) (service.DashboardSnapshot, error) {
	const op = "GET /dashboard"

	var resp dashboardResponse
	if err := c.do(ctx, op, http.MethodGet, c.baseURL+"/dashboard", nil, &resp); err != nil {
		return service.DashboardSnapshot{}, err
	}

	var snapshot service.DashboardSnapshot
	var err error
	if snapshot.Inventory, err = decodeInventory(resp.InventoryOverview); err != nil {
		return service.DashboardSnapshot{}, decodeError(op, "inventory_overview", err)
	}
	if snapshot.Orders, err = decodeList[model.Order](resp.PendingOrders); err != nil {
		return service.DashboardSnapshot{}, decodeError(op, "pending_orders", err)
	}
	if snapshot.PriceRecs, err = decodeList[model.PriceRecommendation](resp.PriceRecommendations); err != nil {
		return service.DashboardSnapshot{}, decodeError(op, "price_recommendations", err)
	}
	if snapshot.ReorderRecs, err = decodeList[model.ReorderRecommendation](resp.ReorderRecommendations); err != nil {
		return service.DashboardSnapshot{}, decodeError(op, "reorder_recommendations", err)
	}
	if snapshot.Forecast, err = decodeList[model.ForecastPoint](resp.SampleForecast); err != nil {
		return service.DashboardSnapshot{}, decodeError(op, "sample_forecast", err)
	}

	return snapshot, nil
}

// Forecast fetches the demand forecast for one product in one store.
func (c *Client) Forecast(ctx context.Context, productID, storeID, days int) ([]model.ForecastPoint, error) {
	const op = "GET /forecast"

	q := url.Values{}
	q.Set("product_id", strconv.Itoa(productID))
	q.Set("store_id", strconv.Itoa(storeID))
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	var points []model.ForecastPoint
	if err := c.do(ctx, op, http.MethodGet, c.baseURL+"/forecast?"+q.Encode(), nil, &points); err != nil {
		return nil, err
	}
	if points == nil {
		points = []model.ForecastPoint{}
	}
	return points, nil
}

// RunOptimization triggers a full optimization cycle and blocks until the
// backend reports it finished.
func (c *Client) RunOptimization(ctx context.Context) (model.OptimizationReport, error) {
	const op = "POST /optimization/run"

	var report model.OptimizationReport
	if err := c.do(ctx, op, http.MethodPost, c.baseURL+"/optimization/run", nil, &report); err != nil {
		return model.OptimizationReport{}, err
	}
	return report, nil
}

// ExecuteAction submits a single mutation. A result listing failed actions
// is an application error even when the HTTP exchange succeeded.
func (c *Client) ExecuteAction(ctx context.Context, action model.Action) (model.ActionResult, error) {
	const op = "POST /actions/execute"

	var result model.ActionResult
	if err := c.do(ctx, op, http.MethodPost, c.baseURL+"/actions/execute", action, &result); err != nil {
		return model.ActionResult{}, err
	}
	if len(result.FailedActions) > 0 {
		reason := result.FailedActions[0].Reason
		if reason == "" {
			reason = "action rejected"
		}
		return result, &Error{Op: op, Kind: KindApplication, Message: reason}
	}
	return result, nil
}

// HealthStatus is the response of the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	err := c.do(ctx, "GET /health", http.MethodGet, c.healthURL, nil, &status)
	return status, err
}

func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("backend request failed", "op", op, "duration", time.Since(start), "error", err)
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, fmt.Errorf("failed to read response: %w", err))
	}

	slog.Debug("backend request",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(payload),
		"duration", time.Since(start))

	msg, hasError := applicationError(payload)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if !hasError {
			msg = truncate(string(payload), maxErrorBody)
		}
		return &Error{Op: op, Kind: KindTransport, StatusCode: resp.StatusCode, Message: msg}
	}
	if hasError {
		return &Error{Op: op, Kind: KindApplication, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// applicationError extracts the "error" field from a JSON object body.
func applicationError(payload []byte) (string, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || isNull(envelope.Error) {
		return "", false
	}

	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err == nil {
		if msg == "" {
			msg = "unspecified error"
		}
		return msg, true
	}
	return string(envelope.Error), true
}

func decodeInventory(raw json.RawMessage) (*model.InventoryStatus, error) {
	// The backend answers {} before its first optimization cycle; that is
	// treated like a missing field so the last known overview stays visible.
	if isNull(raw) || string(bytes.Join(bytes.Fields(raw), nil)) == "{}" {
		return nil, nil
	}
	var status model.InventoryStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func decodeList[T any](raw json.RawMessage) (*[]T, error) {
	if isNull(raw) {
		return nil, nil
	}
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return &items, nil
}

func decodeError(op, field string, err error) *Error {
	return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("failed to parse %s: %w", field, err)}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
