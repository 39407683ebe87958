// Package main runs the dashboard against an in-memory demo backend.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/tui"
	"github.com/Veraticus/stockroom/internal/tui/demo"
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/spf13/cobra"
)

func main() {
	if err := demoCmd().Execute(); err != nil {
		// Use explicit error check to satisfy forbidigo
		_, _ = fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}

func demoCmd() *cobra.Command {
	cfg := demo.DefaultConfig()
	var theme, logFile string

	cmd := &cobra.Command{
		Use:          "tui-demo",
		Short:        "Run the dashboard against generated data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, theme, logFile)
		},
	}

	cmd.Flags().DurationVar(&cfg.Latency, "latency", 400*time.Millisecond, "simulated backend latency")
	cmd.Flags().IntVar(&cfg.Stores, "stores", 6, "number of generated stores")
	cmd.Flags().IntVar(&cfg.Products, "products", 20, "number of generated products")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for generated data")
	cmd.Flags().BoolVar(&cfg.FailActions, "fail-actions", false, "reject every price change and order")
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")

	return cmd
}

func run(cmd *cobra.Command, cfg demo.Config, theme, logFile string) error {
	// Logs go to a file or nowhere; stderr would corrupt the screen.
	if logFile == "" {
		logFile = os.DevNull
	}
	closer, err := common.SetupLogger(slog.LevelDebug, "console", logFile)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context())

	dispatcher, err := dashboard.NewDispatcher(demo.NewBackend(cfg), dashboard.Config{
		Logger: slog.Default(),
	})
	if err != nil {
		return err
	}

	return tui.Run(ctx,
		tui.WithDispatcher(dispatcher),
		tui.WithTheme(themes.GetTheme(theme)),
		tui.WithRefreshInterval(30*time.Second),
	)
}
