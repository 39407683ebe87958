package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run a full optimization cycle",
		Long: `Ask the backend to recompute every price and reorder recommendation.

The run can take minutes. When it finishes the dashboard is reloaded and
the resulting action plan is printed.`,
		RunE: runOptimize,
	}

	cmd.Flags().Bool("quiet", false, "Do not show the progress spinner")

	return cmd
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	out := cmd.OutOrStdout()

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.actionContext(cmd.Context())
	defer cancel()

	var stop func()
	if !quiet {
		stop = startSpinner(ctx, cmd.ErrOrStderr(), "Running optimization...")
	}
	start := time.Now()
	report, err := s.Store.RunOptimization(ctx)
	if stop != nil {
		stop()
	}

	if err != nil {
		// A banner means the run finished and only the reload failed.
		if s.Store.State().Banner == nil {
			return fmt.Errorf("optimization failed: %w", err)
		}
		fmt.Fprintln(out, cli.FormatWarning("Optimization finished but the dashboard could not be reloaded: "+common.UserMessage(err)))
	}

	slog.Info("optimization finished", "duration", time.Since(start).Round(time.Millisecond))

	plan := report.ActionPlan
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Optimization complete: %d immediate, %d scheduled actions",
		len(plan.ImmediateActions), len(plan.ScheduledActions))))
	writeActions(out, "Immediate actions", plan.ImmediateActions)
	return nil
}

func writeActions(w io.Writer, title string, actions []model.Action) {
	if len(actions) == 0 {
		return
	}
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []string{
			string(a.Type),
			strconv.Itoa(a.Details.ProductID),
			strconv.Itoa(a.Details.StoreID),
			string(a.Priority),
			actionSummary(a),
		})
	}
	fmt.Fprintln(w, cli.TitleStyle.Render(title))
	fmt.Fprintln(w, cli.RenderTable([]string{"Action", "Product", "Store", "Priority", "Details"}, rows, ""))
}

func actionSummary(a model.Action) string {
	switch a.Type {
	case model.ActionPriceChange:
		if a.Details.CurrentPrice != nil && a.Details.RecommendedPrice != nil {
			return fmt.Sprintf("$%s → $%s", a.Details.CurrentPrice.StringFixed(2), a.Details.RecommendedPrice.StringFixed(2))
		}
	case model.ActionPlaceOrder:
		return fmt.Sprintf("order %s units (%s)", model.FormatQuantity(a.Details.Quantity), a.Details.Urgency)
	}
	return ""
}

// startSpinner animates an indeterminate progress bar until the returned
// stop function is called or ctx is done.
func startSpinner(ctx context.Context, w io.Writer, description string) func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := bar.Add(1); err != nil {
					slog.Debug("failed to update spinner", "error", err)
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		if err := bar.Finish(); err != nil {
			slog.Debug("failed to finish spinner", "error", err)
		}
	}
}
