package main

import (
	"github.com/spf13/cobra"

	"spendsmart/internal/cli"
	applog "spendsmart/internal/log"
	"spendsmart/internal/services"
	"spendsmart/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume transaction events and record stress and shortfall alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			logger := a.logger.WithComponent(applog.ComponentWorker)
			logger.Info("Starting spendsmart worker")

			result, err := cli.OpenBackend(ctx, a.cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := result.Close(); err != nil {
					logger.Error("Backend cleanup failed", applog.FieldError, err)
				}
			}()

			if result.Events == nil {
				logger.Info("No event bus configured, running periodic shortfall checks only")
			}

			processor := services.NewInsightProcessor(result.Store, result.Store, result.Exporter, services.InsightConfig{
				Balance:        a.cfg.DefaultBalance,
				Days:           a.cfg.ForecastDays,
				CurrencySymbol: a.cfg.CurrencySymbol,
			})

			w := worker.NewInsightWorker(result.Events, processor, a.cfg.InsightInterval)
			if err := w.Run(ctx); err != nil {
				return err
			}
			logger.Info("Worker shutdown complete")
			return nil
		},
	}
}
