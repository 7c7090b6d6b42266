package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline invoice cache",
	Long: `The offline cache keeps the last full invoice and payment lists in an
encrypted database, so filtering still works when the backend cannot.`,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the offline cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if !appInstance.Config.Cache.Enabled {
			fmt.Println("Offline cache is disabled in the configuration.")
			return nil
		}
		if appInstance.Cache == nil {
			fmt.Println("Offline cache is unavailable (see the log for details).")
			return nil
		}

		infos, err := appInstance.CacheInfo(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}

		fmt.Printf("Path: %s\n", appInstance.Config.Cache.Path)
		if len(infos) == 0 {
			fmt.Println("Empty")
			return nil
		}
		for _, info := range infos {
			fmt.Printf("  %-9s %5d item(s), saved %s\n",
				info.Kind,
				info.Count,
				info.SavedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the offline snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete the cached invoices and payments. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ClearCache(context.Background()); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Offline cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
