package cmd

import (
	"fmt"

	"github.com/FranLegon/cloud-drives-search/internal/auth"
	"github.com/FranLegon/cloud-drives-search/internal/config"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/spf13/cobra"
)

var addAccountCmd = &cobra.Command{
	Use:   "add-account",
	Short: "Authorize a Google Drive or OneDrive account for searching",
	Long: `Runs the OAuth flow for the chosen provider and stores the refresh token in
the encrypted config. Only read access is requested. The first account added
becomes the main account, which searches use unless --account says otherwise.
Adding an account that already exists refreshes its token.`,
	RunE: runAddAccount,
}

func init() {
	rootCmd.AddCommand(addAccountCmd)
}

func runAddAccount(cmd *cobra.Command, args []string) error {
	cfg, password, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := config.SelectProvider()
	if err != nil {
		return fmt.Errorf("failed to select provider: %w", err)
	}
	oc, err := oauthConfigFor(cfg, provider)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger.Info("Proceeding with OAuth flow for %s...", provider)
	refreshToken, err := auth.PerformOAuthFlow(ctx, oc)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	email, err := accountEmail(ctx, provider, oc, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to get user email: %w", err)
	}
	logger.Info("Authorized as: %s", email)

	cfg.AddUser(model.User{Provider: provider, Email: email, RefreshToken: refreshToken})
	if err := settings.Store().Save(password, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	logger.Info("Account %s saved.", email)
	return nil
}
