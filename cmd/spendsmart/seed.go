package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendsmart/internal/cli"
	applog "spendsmart/internal/log"
	"spendsmart/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo data set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			result, err := cli.OpenBackend(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer result.Close()

			res, err := seed.Run(ctx, result.Store, time.Now())
			if err != nil {
				return err
			}

			a.logger.Info("Seeded sample data",
				applog.FieldOperation, applog.OpSeed,
				"transactions", res.Transactions,
				"zones", res.Zones)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d transactions and %d zones\n", res.Transactions, res.Zones)
			return nil
		},
	}
}
