package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"spendsmart/internal/analytics"
	"spendsmart/internal/cli"
	"spendsmart/internal/core"
)

func newForecastCmd(a *app) *cobra.Command {
	var (
		days    int
		balance float64
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the cash-flow forecast for the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.ForecastDays
			}
			if !cmd.Flags().Changed("balance") {
				balance = a.cfg.DefaultBalance
			}
			if days < 1 || days > analytics.MaxDays {
				return fmt.Errorf("--days must be between 1 and %d", analytics.MaxDays)
			}

			ctx := cmd.Context()
			result, err := cli.OpenBackend(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer result.Close()

			recent, err := result.Store.RecentTransactions(ctx, analytics.SampleSize)
			if err != nil {
				return fmt.Errorf("load recent transactions: %w", err)
			}

			report := analytics.Forecast(recent, analytics.ForecastParams{
				Days:           days,
				Balance:        balance,
				Now:            time.Now(),
				CurrencySymbol: a.cfg.CurrencySymbol,
			})
			return renderForecast(cmd.OutOrStdout(), report, a.cfg.CurrencySymbol)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", analytics.DefaultDays, "Forecast horizon in days")
	cmd.Flags().Float64VarP(&balance, "balance", "b", analytics.DefaultBalance, "Starting balance")
	return cmd
}

func renderForecast(out io.Writer, report analytics.ForecastReport, symbol string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Day\tProjected\t\n")
	for _, p := range report.Points {
		fmt.Fprintf(tw, "%d\t%s\t\n", p.Day, core.FormatAmount(symbol, p.Projected, 2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nAverage daily spend: %s\n", core.FormatAmount(symbol, report.AvgDaily, 2))
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
	return nil
}
