package cmd

import (
	"fmt"

	"github.com/FranLegon/cloud-drives-search/internal/auth"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the configured accounts",
	RunE:  runAccounts,
}

var checkTokensCmd = &cobra.Command{
	Use:   "check-tokens",
	Short: "Check validity of all refresh tokens",
	RunE:  runCheckTokens,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(checkTokensCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Users) == 0 {
		fmt.Println("No accounts configured. Run 'add-account' to add one.")
		return nil
	}
	for _, u := range cfg.Users {
		marker := " "
		if u.IsMain {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s\n", marker, u.Provider, u.Email)
	}
	return nil
}

func runCheckTokens(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	invalid := 0
	for _, u := range cfg.Users {
		oc, err := oauthConfigFor(cfg, u.Provider)
		if err != nil {
			return err
		}
		if err := auth.ValidateToken(cmd.Context(), oc, u.RefreshToken); err != nil {
			invalid++
			logger.WarningTagged([]string{string(u.Provider), u.Email}, "Token is invalid, re-authenticate with add-account: %v", err)
			continue
		}
		logger.InfoTagged([]string{string(u.Provider), u.Email}, "Token is valid.")
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d tokens are invalid", invalid, len(cfg.Users))
	}
	return nil
}
