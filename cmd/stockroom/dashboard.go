package main

import (
	"log/slog"

	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/tui"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Long: `Open the full-screen inventory dashboard.

The dashboard loads the aggregate backend state, refreshes it periodically
and lets you apply price changes, place orders and run optimizations.
Set logging.file (or --log-file) to keep log output off the screen.`,
		RunE: runDashboard,
	}

	cmd.Flags().String("tab", "overview", "tab to open (overview, inventory, pricing, orders, forecast)")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().Duration("refresh", 0, "automatic refresh interval (default from dashboard.refresh_interval)")

	_ = viper.BindPFlag("dashboard.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	tabName, _ := cmd.Flags().GetString("tab")
	tab, err := dashboard.ParseTab(tabName)
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	refresh := s.Config.RefreshInterval
	if cmd.Flags().Changed("refresh") {
		refresh, _ = cmd.Flags().GetDuration("refresh")
	}

	slog.Info("starting dashboard", "backend", s.Config.Backend.URL, "tab", tab, "refresh", refresh)

	return tui.Run(ctx,
		tui.WithDispatcher(s.Dispatcher),
		tui.WithTheme(themes.GetTheme(viper.GetString("dashboard.theme"))),
		tui.WithRefreshInterval(refresh),
		tui.WithInitialTab(tab),
	)
}
