package main

import (
	"time"

	"github.com/spf13/cobra"

	"spendsmart/internal/backend"
	"spendsmart/internal/cli"
	apphttp "spendsmart/internal/http"
	applog "spendsmart/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			logger := a.logger.WithComponent(applog.ComponentHTTP)

			bcfg, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}
			// the API keeps answering when the store is down; data routes fail per request
			result := backend.OpenOrUnavailable(ctx, backend.NewFactory(a.logger.Logger), bcfg, a.logger.Logger)
			defer func() {
				if err := result.Close(); err != nil {
					logger.Error("Backend cleanup failed", applog.FieldError, err)
				}
			}()

			opts := apphttp.Options{
				CORSOrigin:         a.cfg.CORSOrigin,
				RateLimitPerMinute: a.cfg.RateLimitPerMinute,
				DefaultBalance:     a.cfg.DefaultBalance,
				ForecastDays:       a.cfg.ForecastDays,
				CurrencySymbol:     a.cfg.CurrencySymbol,
				Publisher:          result.Publisher,
				Logger:             logger,
			}

			srv := apphttp.NewServer(":"+a.cfg.Port, result.Store, opts)
			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			logger.Info("Starting spendsmart server",
				"port", a.cfg.Port,
				"backend", a.cfg.DataBackend,
				"amqp_enabled", result.Publisher != nil)

			if err := cli.ServeUntilDone(ctx, srv, logger, shutdownTimeout); err != nil {
				return err
			}
			logger.Info("Server stopped gracefully")
			return nil
		},
	}
}
