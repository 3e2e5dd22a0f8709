package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/FranLegon/cloud-drives-search/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseType string

var browseCmd = &cobra.Command{
	Use:   "browse [folder-id]",
	Short: "Browse and search interactively",
	Long: `Opens the interactive browser on the selected account. Results are paged in
as you scroll. Press / to search, tab to switch the search type, ctrl+f to
filter the loaded items and q to quit.

Logs are written to browse.log in the config directory while the browser is
open.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseType, "type", "t", search.NoSearch.String(), "initial search type")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	typ, err := search.ParseType(browseType)
	if err != nil {
		return err
	}
	initial := search.Request{Type: typ}
	if len(args) > 0 {
		initial.Query = args[0]
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	// The alternate screen owns stdout; keep logs out of it.
	logFile, err := os.OpenFile(filepath.Join(settings.ConfigDir, "browse.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)
	defer logger.SetOutput(os.Stderr)

	m := tui.New(sess.router, tui.Options{
		Initial:     initial,
		GridColumns: settings.GridColumns,
		Account:     fmt.Sprintf("%s (%s)", sess.user.Email, sess.user.Provider),
	},
		coordinator.WithCache(sess.router),
		coordinator.WithContext(ctx),
		coordinator.WithThresholds(thresholds()),
	)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.SetProgram(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser exited: %w", err)
	}
	stats := m.Coordinator().Stats()
	logger.Debug("Browser closed: %d fetches, %d failed, %d discarded", stats.Dispatched, stats.Failed, stats.Discarded)
	return nil
}
