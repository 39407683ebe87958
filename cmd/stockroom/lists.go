package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/components"
	"github.com/spf13/cobra"
)

func pricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "List price recommendations",
		Long: `List the current price recommendations, largest adjustment first.

Apply one with 'stockroom apply-price PRODUCT_ID STORE_ID'.`,
		RunE: runPrices,
	}

	cmd.Flags().Int("store", 0, "Only show recommendations for this store")
	cmd.Flags().Int("limit", 0, "Maximum number of rows (0 for all)")

	return cmd
}

func runPrices(cmd *cobra.Command, _ []string) error {
	storeID, _ := cmd.Flags().GetInt("store")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	recs := slices.DeleteFunc(slices.Clone(s.Store.State().PriceRecs), func(r model.PriceRecommendation) bool {
		return storeID != 0 && r.StoreID != storeID
	})
	slices.SortStableFunc(recs, func(a, b model.PriceRecommendation) int {
		return b.AdjustmentPercentage.Abs().Cmp(a.AdjustmentPercentage.Abs())
	})
	recs = truncateRows(recs, limit)

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.Itoa(r.ProductID),
			strconv.Itoa(r.StoreID),
			"$" + r.CurrentPrice.StringFixed(2),
			"$" + r.RecommendedPrice.StringFixed(2),
			components.FormatAdjustment(r),
			string(r.Priority()),
			r.Reason,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Price recommendations (%d)", len(rows))))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
		[]string{"Product", "Store", "Current", "Recommended", "Change", "Priority", "Reason"},
		rows, "No price recommendations."))
	return nil
}

func reordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorders",
		Short: "List reorder recommendations",
		Long: `List the current reorder recommendations, most urgent first.

Place an order with 'stockroom place-order PRODUCT_ID STORE_ID'.`,
		RunE: runReorders,
	}

	cmd.Flags().String("urgency", "", "Only show this urgency (critical, high, medium, low)")
	cmd.Flags().Int("store", 0, "Only show recommendations for this store")
	cmd.Flags().Int("limit", 0, "Maximum number of rows (0 for all)")

	return cmd
}

func runReorders(cmd *cobra.Command, _ []string) error {
	storeID, _ := cmd.Flags().GetInt("store")
	limit, _ := cmd.Flags().GetInt("limit")

	var urgency model.Urgency
	if raw, _ := cmd.Flags().GetString("urgency"); raw != "" {
		var err error
		if urgency, err = model.ParseUrgency(raw); err != nil {
			return err
		}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	recs := slices.DeleteFunc(slices.Clone(s.Store.State().ReorderRecs), func(r model.ReorderRecommendation) bool {
		return (storeID != 0 && r.StoreID != storeID) || (urgency != "" && r.Urgency != urgency)
	})
	slices.SortStableFunc(recs, func(a, b model.ReorderRecommendation) int {
		return cmp.Compare(b.Urgency.Rank(), a.Urgency.Rank())
	})
	recs = truncateRows(recs, limit)

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.Itoa(r.ProductID),
			strconv.Itoa(r.StoreID),
			strconv.FormatFloat(r.CurrentStock, 'f', 0, 64),
			strconv.FormatFloat(r.ExpectedDemand, 'f', 1, 64),
			model.FormatQuantity(r.ReorderQuantity),
			cli.FormatUrgency(r.Urgency),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Reorder recommendations (%d)", len(rows))))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
		[]string{"Product", "Store", "Stock", "Demand", "Quantity", "Urgency"},
		rows, "No reorder recommendations."))
	return nil
}

func ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List pending orders",
		RunE:  runOrders,
	}
}

func runOrders(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	orders := s.Store.State().Orders
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		id := o.ID
		if id == "" {
			id = o.BackendOrderID
		}
		rows = append(rows, []string{
			id,
			strconv.Itoa(o.ProductID),
			strconv.Itoa(o.StoreID),
			model.FormatQuantity(o.Quantity),
			o.ExpectedDelivery,
			string(o.Status),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Orders (%d)", len(rows))))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
		[]string{"Order", "Product", "Store", "Quantity", "Delivery", "Status"},
		rows, "No pending orders."))
	return nil
}

func truncateRows[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
