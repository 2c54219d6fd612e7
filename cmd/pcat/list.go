package main

import (
	"fmt"

	"github.com/papercat/papercat/internal/record"
	"github.com/spf13/cobra"
)

var (
	listLimit   int
	listMissing string
)

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum records to return (0 = all)")
	listCmd.Flags().StringVar(&listMissing, "missing", "", "Only records with no labels from this source")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog records",
	Long: `List catalog records in file order.

With --missing SOURCE, only records whose SOURCE category group is still
empty are listed, e.g. to find papers worth re-running through a source.

Examples:
  pcat list
  pcat list --missing openalex --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cat := mustLoadCatalog(repoRoot)

	var positions []int
	if listMissing != "" {
		src, err := record.ParseSource(listMissing)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		positions = cat.MissingSource(src)
	} else {
		positions = make([]int, len(cat))
		for i := range cat {
			positions[i] = i
		}
	}
	if listLimit > 0 && len(positions) > listLimit {
		positions = positions[:listLimit]
	}

	results := make([]RecordResult, 0, len(positions))
	for _, i := range positions {
		results = append(results, RecordResult{Index: i, Record: cat[i]})
	}

	if humanOutput {
		if len(results) == 0 {
			fmt.Println("No records")
			return nil
		}
		for n, r := range results {
			printRecordSummary(n+1, r.Index, r.Record)
		}
		fmt.Printf("%d of %d records\n", len(results), len(cat))
	} else {
		outputJSON(results)
	}
	return nil
}
