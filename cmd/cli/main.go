package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/marketledger/internal/adapter/http/dto"
	"github.com/iho/marketledger/internal/infrastructure/logger"
	"github.com/iho/marketledger/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the marketledger HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "marketledger-cli",
		Short:         "MarketLedger CLI tool",
		Long:          `A command line interface for inspecting wallets and orders through the MarketLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MarketLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	client := func() *apiClient {
		return &apiClient{
			baseURL: strings.TrimRight(baseURL, "/"),
			http:    &http.Client{Timeout: timeout},
		}
	}

	rootCmd.AddCommand(walletCmd(client), ordersCmd(client), migrateCmd())
	return rootCmd
}

// migrateCmd talks to the database directly rather than the API.
func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply all pending migrations or revert the newest one",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			log := logger.New(logger.Config{Output: cmd.ErrOrStderr(), Level: "info", Format: "console"})

			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, migrationsPath, log)
			}
			return postgres.RunMigrations(databaseURL, migrationsPath, log)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().StringVar(&migrationsPath, "path", "internal/infrastructure/postgres/migrations", "Directory holding migration files")
	return cmd
}

func walletCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show pending and available balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance dto.BalanceResponse
			if err := client().get(cmd.Context(), walletPath(args[0], "balance"), &balance); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account:   %s\n", balance.AccountID)
			fmt.Fprintf(out, "Pending:   %s\n", balance.Pending.StringFixed(2))
			fmt.Fprintf(out, "Available: %s\n", balance.Available.StringFixed(2))
			return nil
		},
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "List the most recent ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := walletPath(args[0], "history") + "?limit=" + strconv.Itoa(limit)
			var entries []dto.EntryResponse
			if err := client().get(cmd.Context(), path, &entries); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-26s  %-6s  %-9s  %12s  %12s  %12s  %s\n",
				"ID", "TYPE", "BUCKET", "AMOUNT", "PENDING", "AVAILABLE", "DETAILS")
			for _, e := range entries {
				fmt.Fprintf(out, "%-26s  %-6s  %-9s  %12s  %12s  %12s  %s\n",
					e.ID, e.Type, e.Bucket,
					e.Amount.StringFixed(2), e.PendingBalance.StringFixed(2), e.AvailableBalance.StringFixed(2),
					truncate(e.Details, 40))
			}
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Replay an account's entries and compare against recorded balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ReconciliationResponse
			if err := client().get(cmd.Context(), walletPath(args[0], "reconciliation"), &result); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.IsReconciled {
				return fmt.Errorf("account %s is not reconciled", result.AccountID)
			}
			return nil
		},
	}

	reconcileAllCmd := &cobra.Command{
		Use:   "reconcile-all",
		Short: "Reconcile every account and list the ones that diverge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report dto.ReconciliationReportResponse
			if err := client().get(cmd.Context(), "/api/v1/reconciliation", &report); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of %d accounts reconciled\n", report.ReconciledAccounts, report.TotalAccounts)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "%-26s  broken at %s\n", d.AccountID, d.BrokenEntry)
			}
			if len(report.Discrepancies) > 0 {
				return fmt.Errorf("%d accounts are not reconciled", len(report.Discrepancies))
			}
			return nil
		},
	}

	cmd.AddCommand(balanceCmd, historyCmd, reconcileCmd, reconcileAllCmd)
	return cmd
}

func ordersCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <order-id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var order json.RawMessage
			if err := client().get(cmd.Context(), "/api/v1/orders/"+url.PathEscape(args[0]), &order); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	}

	trackCmd := &cobra.Command{
		Use:   "track <order-id> <level>",
		Short: "Advance an order's tracking progress (1 placed, 2 dispatched, 3 delivered)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid level %q: %w", args[1], err)
			}
			var order json.RawMessage
			path := "/api/v1/orders/" + url.PathEscape(args[0]) + "/tracking"
			if err := client().post(cmd.Context(), path, dto.TrackingProgressRequest{Level: level}, &order); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	}

	cmd.AddCommand(getCmd, trackCmd)
	return cmd
}

func walletPath(accountID, action string) string {
	return "/api/v1/wallets/" + url.PathEscape(accountID) + "/" + action
}

func (c *apiClient) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *apiClient) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), dest)
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Data      json.RawMessage `json:"data"`
		Message   string          `json:"message"`
		ErrorCode string          `json:"error_code"`
		Success   bool            `json:"success"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if !env.Success {
		if env.ErrorCode != "" {
			return fmt.Errorf("%s (%s, status %d)", env.Message, env.ErrorCode, resp.StatusCode)
		}
		return fmt.Errorf("%s (status %d)", env.Message, resp.StatusCode)
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
