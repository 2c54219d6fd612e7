package main

import (
	"fmt"

	"github.com/papercat/papercat/internal/index"
	"github.com/papercat/papercat/internal/record"
	"github.com/spf13/cobra"
)

var labelsLimit int

func init() {
	labelsCmd.Flags().IntVar(&labelsLimit, "limit", 0, "Maximum labels to return (0 = all)")
	rootCmd.AddCommand(labelsCmd)
}

var labelsCmd = &cobra.Command{
	Use:   "labels <source> <field>",
	Short: "Count label frequencies for one category field",
	Long: `Count how many records carry each label of a category field, most
frequent first. Reads the query cache.

Examples:
  pcat labels openalex topics
  pcat labels pwc methods --limit 20
  pcat labels crossref subjects --human`,
	Args: cobra.ExactArgs(2),
	RunE: runLabels,
}

func runLabels(cmd *cobra.Command, args []string) error {
	src, err := record.ParseSource(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	field := args[1]
	if !validField(src, field) {
		exitWithError(ExitError, "unknown field %q for %s (valid: %v)", field, src, record.Fields(src))
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	counts, err := db.LabelCounts(src, field)
	if err != nil {
		exitWithError(ExitError, "counting labels: %v", err)
	}
	if labelsLimit > 0 && len(counts) > labelsLimit {
		counts = counts[:labelsLimit]
	}
	if counts == nil {
		counts = []index.LabelCount{}
	}

	if humanOutput {
		if len(counts) == 0 {
			fmt.Println("No labels (run 'pcat rebuild' if the cache is empty)")
			return nil
		}
		for _, c := range counts {
			fmt.Printf("%5d  %s\n", c.Count, c.Label)
		}
	} else {
		outputJSON(counts)
	}
	return nil
}

func validField(src record.Source, field string) bool {
	for _, f := range record.Fields(src) {
		if f == field {
			return true
		}
	}
	return false
}
