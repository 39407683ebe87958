package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show inventory health and notifications",
		Long: `Load the dashboard once and print the overview: notifications,
inventory status counts and recommendation totals.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	writeOverview(cmd.OutOrStdout(), dashboard.Route(s.Store.State(), dashboard.TabOverview))
	return nil
}

func writeOverview(w io.Writer, v dashboard.View) {
	fmt.Fprintln(w, cli.FormatTitle("Inventory overview"))

	for _, n := range v.Notifications {
		fmt.Fprintln(w, cli.FormatNotification(n))
	}
	fmt.Fprintln(w)

	if inv := v.Inventory; inv != nil {
		counts := inv.StatusCounts
		fmt.Fprintln(w, cli.RenderBox("Inventory", cli.RenderKeyValues([][2]string{
			{"Stores", strconv.Itoa(inv.TotalStores)},
			{"Products", strconv.Itoa(inv.TotalProducts)},
			{"Combinations", strconv.Itoa(inv.ProductStoreCombinations)},
			{"Healthy", fmt.Sprintf("%d (%.1f%%)", counts.Healthy, inv.HealthyPercentage())},
			{"Low", strconv.Itoa(counts.Low)},
			{"Critical", strconv.Itoa(counts.Critical)},
			{"Stockout", strconv.Itoa(counts.Stockout)},
		})))
	}

	if sum := v.Summary; sum != nil {
		fmt.Fprintln(w, cli.RenderBox("Working set", cli.RenderKeyValues([][2]string{
			{"Orders", fmt.Sprintf("%d (%d provisional)", sum.Orders, sum.ProvisionalOrders)},
			{"Price changes", fmt.Sprintf("%d (%d up, %d down)", sum.PriceRecs, sum.PriceIncreases, sum.PriceDecreases)},
			{"Reorders", fmt.Sprintf("%d (%d critical)", sum.ReorderRecs, sum.CriticalReorders)},
		})))
	}
}
