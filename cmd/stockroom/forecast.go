package main

import (
	"fmt"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/components"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast PRODUCT_ID STORE_ID",
		Short: "Show the demand forecast for a product in a store",
		Args:  cobra.ExactArgs(2),
		RunE:  runForecast,
	}

	cmd.Flags().IntP("days", "d", 0, "Forecast horizon in days (default from forecast.days)")

	_ = viper.BindPFlag("forecast.days", cmd.Flags().Lookup("days"))

	return cmd
}

func runForecast(cmd *cobra.Command, args []string) error {
	key, err := parseKey(args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	points, err := s.Store.LoadForecast(cmd.Context(), key.ProductID, key.StoreID)
	if err != nil {
		return fmt.Errorf("failed to load forecast: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Demand forecast for product %d at store %d", key.ProductID, key.StoreID)))

	if peak, ok := model.ForecastPeak(points); ok {
		fmt.Fprintln(out, cli.RenderKeyValues([][2]string{
			{"Days", fmt.Sprintf("%d", len(points))},
			{"Total", fmt.Sprintf("%.0f units", model.ForecastTotal(points))},
			{"Peak", fmt.Sprintf("%.1f on %s", peak.Forecast, peak.Date)},
		}))
	}

	tableRows := components.ForecastRows(points, 30)
	rows := make([][]string, len(tableRows))
	for i, r := range tableRows {
		rows[i] = r
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"Date", "Units", ""}, rows, "No forecast available."))
	return nil
}
