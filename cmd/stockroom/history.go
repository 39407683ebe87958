package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/config"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the action journal",
		Long: `Show price changes, orders and dismissals recorded from this machine,
newest first. The journal is local; it does not reflect actions taken
elsewhere.`,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().Int("product", 0, "Only show entries for this product (requires --store)")
	cmd.Flags().Int("store", 0, "Only show entries for this store (requires --product)")
	cmd.MarkFlagsRequiredTogether("product", "store")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	productID, _ := cmd.Flags().GetInt("product")
	storeID, _ := cmd.Flags().GetInt("store")

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	journal, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	var entries []service.JournalEntry
	if productID != 0 {
		entries, err = journal.ListByKey(ctx, model.RecommendationKey{ProductID: productID, StoreID: storeID})
		entries = truncateRows(entries, limit)
	} else {
		entries, err = journal.List(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read action journal: %w", err)
	}

	counts, err := journal.CountByOutcome(ctx)
	if err != nil {
		return fmt.Errorf("failed to read action journal: %w", err)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		outcome := e.Outcome
		switch outcome {
		case service.OutcomeSucceeded:
			outcome = cli.SuccessStyle.Render(outcome)
		case service.OutcomeFailed:
			outcome = cli.ErrorStyle.Render(outcome)
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Kind,
			strconv.Itoa(e.ProductID),
			strconv.Itoa(e.StoreID),
			string(e.Priority),
			outcome,
			e.Error,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Action history"))
	fmt.Fprintln(out, cli.RenderTable(
		[]string{"When", "Action", "Product", "Store", "Priority", "Outcome", "Error"},
		rows, "No actions recorded yet."))
	fmt.Fprintf(out, "%d succeeded · %d failed · %d ignored\n",
		counts[service.OutcomeSucceeded], counts[service.OutcomeFailed], counts[service.OutcomeIgnored])
	return nil
}
