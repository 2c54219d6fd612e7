package main

import (
	"fmt"
	"os"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/config"
	"github.com/papercat/papercat/internal/integrate"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new papercat repository",
	Long: `Initialize a new papercat repository in the current directory.

Creates:
  .papercat/
  ├── data.json       # Empty catalog
  ├── config.json     # Default config
  └── cache/          # Query cache (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a papercat repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.PapercatDir, err)
	}

	if err := catalog.Save(config.CatalogPath(root), catalog.Catalog{}); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.CatalogFile, err)
	}

	sources := make([]string, len(integrate.DefaultOrder))
	for i, src := range integrate.DefaultOrder {
		sources[i] = string(src)
	}
	cfg := &config.Config{Sources: sources}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized papercat repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
