package main

import (
	"fmt"

	"github.com/papercat/papercat/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from the catalog",
	Long: `Rebuild the SQLite query cache from .papercat/data.json.

Use this after pulling changes from git, after editing data.json by hand,
or if the cache becomes corrupted. 'pcat integrate' keeps an existing cache
up to date on its own.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	count, err := db.RebuildFromCatalog(config.CatalogPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query cache with %d records\n", count)
	} else {
		outputJSON(RebuildResult{
			Status:  "rebuilt",
			Records: count,
		})
	}
	return nil
}
