package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsmart/internal/cli"
	applog "spendsmart/internal/log"
	gsheet "spendsmart/internal/sheets/google"
)

func newSheetsAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets export with a user account",
		Long: "Runs the OAuth consent flow for GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE " +
			"and saves the token to GOOGLE_OAUTH_TOKEN_FILE for the worker's exporter.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			oauthCfg, err := gsheet.OAuthConfig(gsheet.OAuthClient{
				JSON: a.cfg.GoogleOAuthClientJSON,
				File: a.cfg.GoogleOAuthClientFile,
			}, a.cfg.OAuthRedirectPort)
			if err != nil {
				return err
			}

			tok, err := gsheet.Authorize(ctx, oauthCfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := gsheet.SaveToken(a.cfg.GoogleOAuthTokenFile, tok); err != nil {
				return err
			}

			a.logger.Info("Saved OAuth token",
				applog.FieldComponent, applog.ComponentSheets,
				"path", a.cfg.GoogleOAuthTokenFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", a.cfg.GoogleOAuthTokenFile)
			return nil
		},
	}
}
