package cmd

import (
	"fmt"

	"github.com/FranLegon/cloud-drives-search/internal/config"
	"github.com/FranLegon/cloud-drives-search/internal/database"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the encrypted configuration and the local cache",
	Long: `Performs first-time setup. It prompts for a master password and for the
OAuth client credentials of Google Drive and OneDrive, writes them encrypted
to the config directory and creates the search cache.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	store := settings.Store()
	if store.Exists() {
		return fmt.Errorf("already initialized in %s", settings.ConfigDir)
	}

	logger.Info("First-time setup detected. Welcome!")
	password, err := settings.Password(true)
	if err != nil {
		return err
	}

	logger.Info("Please provide your OAuth Client credentials.")
	cfg := &config.AppConfig{}
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Google Client ID", &cfg.GoogleClient.ID},
		{"Google Client Secret", &cfg.GoogleClient.Secret},
		{"Microsoft Client ID", &cfg.MicrosoftClient.ID},
		{"Microsoft Client Secret", &cfg.MicrosoftClient.Secret},
	} {
		value, err := config.PromptString(field.label)
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
		*field.dst = value
	}

	if err := store.Init(password, cfg); err != nil {
		return err
	}

	db, err := database.Open(settings.CachePath, settings.PageSize)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer db.Close()

	logger.Info("Initialization complete. You can now add accounts using the 'add-account' command.")
	return nil
}
