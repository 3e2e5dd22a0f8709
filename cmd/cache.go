package cmd

import (
	"fmt"

	"github.com/FranLegon/cloud-drives-search/internal/database"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local search cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of cached items and searches",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached item and search result",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	db, err := database.Open(settings.CachePath, settings.PageSize)
	if err != nil {
		return err
	}
	defer db.Close()

	items, searches, err := db.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Cache:    %s\nItems:    %d\nSearches: %d\n", settings.CachePath, items, searches)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	db, err := database.Open(settings.CachePath, settings.PageSize)
	if err != nil {
		return err
	}
	defer db.Close()

	items, searches, err := db.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if err := db.Clear(cmd.Context()); err != nil {
		return err
	}
	logger.Info("Removed %d items and %d cached searches.", items, searches)
	return nil
}
