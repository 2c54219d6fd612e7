package main

import (
	"fmt"
	"strings"

	"github.com/papercat/papercat/internal/merge"
	"github.com/papercat/papercat/internal/record"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the pipeline's sources in run order",
	Long: `List the configured sources in the order 'pcat integrate' runs them,
with the category group each one fills and its merge policy.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

// SourceInfo describes one pipeline stage.
type SourceInfo struct {
	Source   string   `json:"source"`
	Provider string   `json:"provider"`
	Group    string   `json:"group"`
	Fields   []string `json:"fields"`
	Abstract bool     `json:"abstract"`
	Create   string   `json:"create"`
	Dedup    []string `json:"dedup,omitempty"`
}

var providers = map[record.Source]string{
	record.SourceCrossref:       "Crossref REST API",
	record.SourceOpenAIRE:       "OpenAIRE search API",
	record.SourceOpenAlex:       "OpenAlex works API",
	record.SourcePapersWithCode: "Papers with Code dump",
}

func runSources(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	order, err := pipelineOrder(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "invalid sources: %v", err)
	}

	infos := make([]SourceInfo, 0, len(order))
	for _, src := range order {
		pol := merge.PolicyFor(src)
		infos = append(infos, SourceInfo{
			Source:   string(src),
			Provider: providers[src],
			Group:    record.GroupKey(src),
			Fields:   pol.Fields,
			Abstract: pol.Abstract,
			Create:   pol.Create.String(),
			Dedup:    pol.Dedup,
		})
	}

	if humanOutput {
		for i, info := range infos {
			fmt.Printf("%d. %-9s %s\n", i+1, info.Source, info.Provider)
			fmt.Printf("   %s: %s\n", info.Group, strings.Join(info.Fields, ", "))
			fmt.Printf("   create: %s  abstract: %t", info.Create, info.Abstract)
			if len(info.Dedup) > 0 {
				fmt.Printf("  dedup: %s", strings.Join(info.Dedup, ", "))
			}
			fmt.Println()
		}
	} else {
		outputJSON(infos)
	}
	return nil
}
