package main

import (
	"github.com/spf13/cobra"

	"spendsmart/internal/cli"
	"spendsmart/internal/config"
	applog "spendsmart/internal/log"
)

// app is the state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "spendsmart",
		Short:         "Mood-aware expense tracker backend",
		Long:          "SpendSmart stores expenses and danger zones and serves mood and cash-flow analytics.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.LogLevel)
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newWorkerCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newForecastCmd(a),
		newSheetsAuthCmd(a),
	)
	return root
}
