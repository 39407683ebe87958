package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/config"
	"github.com/Veraticus/stockroom/internal/dashboard"
	"github.com/Veraticus/stockroom/internal/service"
	"github.com/Veraticus/stockroom/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newReportWriter creates the export destination. Tests replace it.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (service.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the working set to Google Sheets",
		Long: `Load the dashboard and write inventory status, price recommendations,
reorder recommendations and orders to a Google Sheet.

Authenticate with a service account (sheets.service_account_path) or with
an OAuth refresh token obtained via 'stockroom export auth'.`,
		RunE: runExport,
	}

	cmd.Flags().String("spreadsheet-id", "", "Write to this spreadsheet instead of creating one")

	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))

	cmd.AddCommand(exportAuthCmd())

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("google sheets is not configured: %w", err)
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	ws := dashboard.WorkingSet(s.Store.State(), time.Now())

	writer, err := newReportWriter(ctx, *sheetsCfg)
	if err != nil {
		return err
	}
	if err := writer.Write(ctx, ws); err != nil {
		return fmt.Errorf("failed to export working set: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"Exported %d price recommendations, %d reorder recommendations and %d orders",
		len(ws.PriceRecs), len(ws.ReorderRecs), len(ws.Orders))))
	return nil
}

func exportAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a Google Sheets refresh token",
		Long: `Run the browser OAuth2 flow for Google Sheets.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET). This command will:
1. Start a local callback listener
2. Print the URL to open in your browser
3. Exchange the authorization code for a refresh token
4. Save the token next to your config`,
		RunE: runExportAuth,
	}

	cmd.Flags().String("token-file", "", "Where to save the token (default: $HOME/.config/stockroom/sheets-token.json)")
	cmd.Flags().String("listen", sheets.DefaultCallbackAddr, "Address for the OAuth2 callback listener")

	return cmd
}

func runExportAuth(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	tokenFile, _ := cmd.Flags().GetString("token-file")
	listen, _ := cmd.Flags().GetString("listen")

	if tokenFile == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		tokenFile = filepath.Join(dir, "sheets-token.json")
	}

	oauthCfg := sheets.OAuth2Config{
		ClientID:     viper.GetString("sheets.client_id"),
		ClientSecret: viper.GetString("sheets.client_secret"),
		TokenFile:    config.ExpandPath(tokenFile),
		CallbackAddr: listen,
	}

	token, err := sheets.Authenticate(cmd.Context(), oauthCfg, func(authURL string) {
		fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize stockroom:"))
		fmt.Fprintln(out, authURL)
	})
	if err != nil {
		return fmt.Errorf("google sheets authentication failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess("Authentication complete. Token saved to "+oauthCfg.TokenFile))
	if token.RefreshToken != "" {
		fmt.Fprintln(out, cli.FormatInfo("Add this to your config as sheets.refresh_token:"))
		fmt.Fprintln(out, token.RefreshToken)
	}
	return nil
}
