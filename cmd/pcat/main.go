// Package main provides the pcat CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/config"
	"github.com/papercat/papercat/internal/index"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pcat",
	Short: "Paper metadata catalog",
	Long: `pcat keeps a local catalog of research-paper metadata and enriches each
record from Crossref, OpenAIRE, OpenAlex and a Papers-with-Code dump.

Records live in .papercat/data.json; an ephemeral SQLite cache serves
search and label statistics. All commands output JSON by default.

Environment Variables:
  PAPERCAT_ROOT     Repository to use instead of searching from the cwd
  PAPERCAT_MAILTO   Contact address sent to Crossref and OpenAlex
  OPENALEX_API_KEY  OpenAlex API key (optional)
  PAPERCAT_RPS      Requests per second per source (optional)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for PAPERCAT_MAILTO, OPENALEX_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.FindRoot(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadCatalog loads the catalog document, exits on error.
func mustLoadCatalog(repoRoot string) catalog.Catalog {
	cat, err := catalog.Load(config.CatalogPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading catalog: %v", err)
	}
	return cat
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *index.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := index.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// refreshIndex rebuilds the query cache after the catalog changed. The cache
// is disposable, so a failure is only a warning.
func refreshIndex(repoRoot string) {
	if _, err := os.Stat(config.DBPath(repoRoot)); err != nil {
		return // never built; 'pcat rebuild' creates it
	}
	db, err := index.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening database: %v\n", err)
		return
	}
	defer db.Close()

	if _, err := db.RebuildFromCatalog(config.CatalogPath(repoRoot)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: refreshing query cache: %v (run 'pcat rebuild')\n", err)
	}
}

// interruptContext returns a context cancelled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
