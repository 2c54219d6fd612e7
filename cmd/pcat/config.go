package main

import (
	"fmt"
	"strings"

	"github.com/papercat/papercat/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  pcat config                                   # Show all config
  pcat config mailto                            # Get specific value
  pcat config mailto me@example.org             # Set value
  pcat config sources crossref,openalex         # Set pipeline order
  pcat config code-index-path ~/data/pwc.json   # Set dump location

Keys:
  code-index-path  Path to papers_with_abstracts.json (relative to the repo root)
  sources          Comma-separated pipeline order (crossref, openaire, openalex, pwc)
  mailto           Contact address for Crossref and OpenAlex polite pools`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	CodeIndexPath string   `json:"code_index_path"`
	Sources       []string `json:"sources"`
	Mailto        string   `json:"mailto"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("code-index-path: %s\n", cfg.CodeIndexPath)
			fmt.Printf("sources:         %s\n", strings.Join(cfg.Sources, ","))
			fmt.Printf("mailto:          %s\n", cfg.Mailto)
		} else {
			sources := cfg.Sources
			if sources == nil {
				sources = []string{}
			}
			outputJSON(ConfigResponse{
				CodeIndexPath: cfg.CodeIndexPath,
				Sources:       sources,
				Mailto:        cfg.Mailto,
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		var value string
		switch normalizedKey {
		case "code-index-path":
			value = cfg.CodeIndexPath
		case "sources":
			value = strings.Join(cfg.Sources, ",")
		case "mailto":
			value = cfg.Mailto
		default:
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(normalizedKey, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]

	switch normalizedKey {
	case "code-index-path":
		cfg.CodeIndexPath = value
		if path := cfg.ResolveCodeIndexPath(repoRoot); path != "" {
			if err := config.ValidateCodeIndexPath(path); err != nil {
				exitWithError(ExitConfigError, "%v", err)
			}
		}
	case "sources":
		sources := splitList(value)
		if err := config.ValidateSources(sources); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Sources = sources
	case "mailto":
		cfg.Mailto = value
	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", normalizedKey, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}
	return nil
}

// normalizeKey converts key to lowercase with hyphens (e.g., code_index_path -> code-index-path).
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
