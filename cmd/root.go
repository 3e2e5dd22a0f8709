package cmd

import (
	"os"

	"github.com/FranLegon/cloud-drives-search/internal/config"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v        = viper.New()
	settings config.Settings
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cloud-drives-search",
	Short: "Search and browse files across Google Drive and OneDrive accounts.",
	Long: `cloud-drives-search pages through searches of your cloud drives: plain
file search, favorites, recently modified files, files shared with you and a
photo gallery. Every page fetched is kept in a local cache that can be
searched offline.

Account credentials are stored encrypted in the config directory, protected
by a master password. Settings can come from flags, a YAML settings file or
CDS_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings(v)
		if err != nil {
			return err
		}
		level, err := logger.ParseLevel(s.LogLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		settings = s
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	if err := config.RegisterFlags(v, rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}
