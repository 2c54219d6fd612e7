package main

import (
	"fmt"
	"strings"

	"github.com/papercat/papercat/internal/index"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search records by keyword",
	Long: `Search records by keyword using the query cache.

Query Syntax:
  Plain text      - Searches title, abstract, and category labels
  title:text      - Search titles only
  abstract:text   - Search abstracts only
  label:text      - Search category labels only

Examples:
  pcat search "transformer"
  pcat search "label:machine translation"
  pcat search "title:attention"

Run 'pcat rebuild' first if the cache has never been built.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	query := args[0]
	var entries []index.Entry
	var err error

	field, value, hasField := strings.Cut(query, ":")
	switch {
	case hasField && (field == "title" || field == "abstract" || field == "label"):
		entries, err = db.SearchField(field, value, searchLimit)
	default:
		entries, err = db.Search(query, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	results := make([]RecordResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, RecordResult{Index: e.Index, Record: e.Record})
	}

	if humanOutput {
		if len(results) == 0 {
			fmt.Println("No records found")
		} else {
			fmt.Printf("Found %d records:\n\n", len(results))
			for n, r := range results {
				printRecordSummary(n+1, r.Index, r.Record)
			}
		}
	} else {
		outputJSON(results)
	}
	return nil
}
