package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.ReportWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(srv, config, logger), nil
}

func newWriter(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{service: srv, config: config, logger: logger}
}

// Write replaces the contents of every tab with the working set.
func (w *Writer) Write(ctx context.Context, ws service.WorkingSet) error {
	w.logger.Info("starting working set export",
		"price_recommendations", len(ws.PriceRecs),
		"reorder_recommendations", len(ws.ReorderRecs),
		"orders", len(ws.Orders))

	retryOpts := common.RetryOptions{
		Operation:    "sheets export",
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetIDs, err := w.ensureTabs(ctx, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to prepare tabs: %w", err)
	}

	data := BuildTabData(ws)
	tabValues := map[string][][]any{
		TabSummary:  summaryValues(data.Summary),
		TabPrices:   priceValues(data.Prices),
		TabReorders: reorderValues(data.Reorders),
		TabOrders:   orderValues(data.Orders),
	}

	rows := 0
	for _, tab := range Tabs {
		values := tabValues[tab]
		err := common.WithRetry(ctx, func() error {
			return classify(w.replaceTab(ctx, spreadsheetID, tab, values))
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s tab: %w", tab, err)
		}
		rows += len(values)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.applyFormatting(ctx, spreadsheetID, sheetIDs))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("working set export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", rows)

	return nil
}

// classify marks client errors other than rate limiting as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return common.Permanent(err)
	}
	return err
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource))}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, tab := range Tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// ensureTabs adds any missing tab and returns the sheet id of every tab.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	ids, err := w.sheetIDs(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	var requests []*sheets.Request
	for _, tab := range Tabs {
		if _, ok := ids[tab]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
			})
		}
	}
	if len(requests) == 0 {
		return ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to add tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}

	w.logger.Debug("added missing tabs", "count", len(requests))
	return ids, nil
}

func (w *Writer) sheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	spreadsheet, err := w.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			ids[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}
	return ids, nil
}

// replaceTab clears tab and writes values in batches.
func (w *Writer) replaceTab(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", tab, err)
	}

	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		rangeStr := fmt.Sprintf("%s!A%d", tab, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: values[i:end]}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at %s: %w", rangeStr, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", end-i)
	}

	return nil
}

func summaryValues(s SummaryData) [][]any {
	return [][]any{
		{"Stockroom Working Set", s.GeneratedAt.Format("Jan 2, 2006 15:04")},
		{},
		{"Inventory"},
		{"Stores", s.TotalStores},
		{"Products", s.TotalProducts},
		{"Healthy", s.Counts.Healthy},
		{"Low", s.Counts.Low},
		{"Critical", s.Counts.Critical},
		{"Stockout", s.Counts.Stockout},
		{"Healthy %", fmt.Sprintf("%.1f%%", s.HealthyPct)},
		{},
		{"Recommendations"},
		{"Price increases", s.PriceIncreases},
		{"Price decreases", s.PriceDecreases},
		{"Critical reorders", s.CriticalReorders},
		{},
		{"Orders"},
		{"Open orders", s.OpenOrders},
		{"Provisional orders", s.ProvisionalOrders},
	}
}

func priceValues(rows []PriceRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Product", "Store", "Current Price", "Recommended Price", "Adjustment %", "Priority", "Reason"})
	for _, r := range rows {
		values = append(values, []any{
			r.ProductID,
			r.StoreID,
			r.CurrentPrice.InexactFloat64(),
			r.RecommendedPrice.InexactFloat64(),
			r.AdjustmentPct.Round(2).InexactFloat64(),
			string(r.Priority),
			r.Reason,
		})
	}
	return values
}

func reorderValues(rows []ReorderRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Product", "Store", "Urgency", "Current Stock", "Expected Demand", "Reorder Quantity", "Priority"})
	for _, r := range rows {
		values = append(values, []any{
			r.ProductID,
			r.StoreID,
			string(r.Urgency),
			r.CurrentStock,
			r.ExpectedDemand,
			r.ReorderQuantity,
			string(r.Priority),
		})
	}
	return values
}

func orderValues(rows []OrderRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Order", "Product", "Store", "Quantity", "Expected Delivery", "Status", "Provisional"})
	for _, r := range rows {
		provisional := ""
		if r.Provisional {
			provisional = "yes"
		}
		values = append(values, []any{
			r.OrderID,
			r.ProductID,
			r.StoreID,
			r.Quantity,
			r.ExpectedDelivery,
			string(r.Status),
			provisional,
		})
	}
	return values
}

// applyFormatting bolds and freezes header rows and formats currency columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetIDs map[string]int64) error {
	var requests []*sheets.Request

	for _, tab := range Tabs {
		sheetID, ok := sheetIDs[tab]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
							BackgroundColor: &sheets.Color{
								Red:   0.9,
								Green: 0.9,
								Blue:  0.9,
								Alpha: 1.0,
							},
						},
					},
					Fields: "userEnteredFormat.textFormat,userEnteredFormat.backgroundColor",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   7,
					},
				},
			},
		)
		if tab != TabSummary {
			requests = append(requests, &sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			})
		}
	}

	if pricesID, ok := sheetIDs[TabPrices]; ok {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          pricesID,
					StartRowIndex:    1,
					StartColumnIndex: 2,
					EndColumnIndex:   4,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "$#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	if len(requests) == 0 {
		return nil
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
