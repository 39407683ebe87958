package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.LoadTimeout)
	defer cancel()

	status, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend at %s is unhealthy: %w", cfg.Backend.URL, err)
	}

	msg := fmt.Sprintf("Backend at %s is %s", cfg.Backend.URL, status.Status)
	if status.Message != "" {
		msg += ": " + status.Message
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	return nil
}
