package main

import (
	"fmt"
	"os"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/spf13/cobra"
)

var getDOI string

func init() {
	getCmd.Flags().StringVar(&getDOI, "doi", "", "DOI to resolve together with the title")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <title-or-doi>",
	Short: "Show the record for a paper",
	Long: `Resolve a title or DOI against the catalog and show the record.

Titles are compared first and DOIs second, both after case and whitespace
normalization. Without --doi the argument is tried as both. When the title
names one record and the DOI another, the title match is shown and the
conflict is reported.

Examples:
  pcat get "Attention Is All You Need"
  pcat get 10.5555/example
  pcat get "Attention Is All You Need" --doi 10.5555/example`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// GetResult is the response for the get command.
type GetResult struct {
	RecordResult
	ConflictIndex *int `json:"conflict_index,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cat := mustLoadCatalog(repoRoot)

	title, doi := args[0], getDOI
	if doi == "" {
		doi = title
	}

	match := catalog.ResolveAll(cat, title, doi)
	idx := match.Index()
	if idx == catalog.NotFound {
		exitWithError(ExitNotFound, "no record matches %q", args[0])
	}

	result := GetResult{RecordResult: RecordResult{Index: idx, Record: cat[idx]}}
	if match.Ambiguous() {
		conflict := match.DOIIndex
		result.ConflictIndex = &conflict
	}

	if humanOutput {
		printRecordDetail(idx, cat[idx])
		if c := result.ConflictIndex; c != nil {
			fmt.Fprintf(os.Stderr, "\nwarning: DOI matches a different record [%d] %s\n", *c, cat[*c].Title)
		}
	} else {
		outputJSON(result)
	}
	return nil
}
