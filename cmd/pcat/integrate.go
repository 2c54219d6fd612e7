package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papercat/papercat/internal/catalog"
	"github.com/papercat/papercat/internal/config"
	"github.com/papercat/papercat/internal/integrate"
	"github.com/spf13/cobra"
)

var (
	integrateDOI  string
	integrateFile string
)

func init() {
	integrateCmd.Flags().StringVar(&integrateDOI, "doi", "", "DOI of the paper")
	integrateCmd.Flags().StringVar(&integrateFile, "file", "", "Batch file of title<TAB>doi lines")
	rootCmd.AddCommand(integrateCmd)
}

var integrateCmd = &cobra.Command{
	Use:   "integrate [title]",
	Short: "Fetch metadata for a paper from every source",
	Long: `Fetch metadata for a paper from every configured source and merge it into
the catalog. Existing values are never overwritten; a source that fails is
reported and skipped.

Examples:
  pcat integrate "Attention Is All You Need" --doi 10.5555/example
  pcat integrate --file papers.tsv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIntegrate,
}

// IntegrateResult is the response for the integrate command.
type IntegrateResult struct {
	Reports []integrate.Report `json:"reports"`
	Created int                `json:"created"`
	Changed int                `json:"changed"`
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	var papers []integrate.Paper
	switch {
	case integrateFile != "" && len(args) > 0:
		exitWithError(ExitError, "give either a title or --file, not both")
	case integrateFile != "":
		papers = mustReadBatchFile(integrateFile)
	case len(args) == 1:
		papers = []integrate.Paper{{Title: args[0], DOI: integrateDOI}}
	default:
		exitWithError(ExitError, "a title or --file is required")
	}

	repoRoot := mustFindRepository()
	reports := runPipeline(repoRoot, papers)
	outputIntegrateResult(reports)
	return nil
}

// runPipeline integrates papers into the repository catalog and refreshes
// the query cache. Exits on load, save or interrupt failures.
func runPipeline(repoRoot string, papers []integrate.Paper) []integrate.Report {
	cfg := mustLoadConfig(repoRoot)
	reg := mustBuildRegistry(repoRoot, cfg)

	in := integrate.New(reg, integrate.WithProgress(func(p integrate.Paper, s integrate.Step) {
		if s.Status == integrate.StatusError {
			fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", s.Source, p.Title, s.Error)
		}
	}))
	store := catalog.FileStore{Path: config.CatalogPath(repoRoot)}

	ctx, stop := interruptContext()
	defer stop()

	reports, err := in.RunBatch(ctx, store, papers)
	if len(reports) > 0 {
		refreshIndex(repoRoot)
	}
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintf(os.Stderr, "interrupted after %d of %d papers\n", len(reports), len(papers))
			os.Exit(ExitInterrupted)
		case errors.Is(err, catalog.ErrMalformed):
			exitWithError(ExitDataError, "%v", err)
		default:
			exitWithError(ExitError, "%v", err)
		}
	}
	return reports
}

func outputIntegrateResult(reports []integrate.Report) {
	result := IntegrateResult{Reports: reports}
	for _, r := range reports {
		if r.Created {
			result.Created++
		}
		if r.Changed {
			result.Changed++
		}
	}

	if !humanOutput {
		outputJSON(result)
		return
	}

	for _, r := range reports {
		fmt.Printf("%s\n", truncateString(r.Title, DetailTitleMaxLen))
		for _, s := range r.Steps {
			line := fmt.Sprintf("  %-9s %s", s.Source, s.Status)
			if len(s.Filled) > 0 {
				line += " (" + strings.Join(s.Filled, ", ") + ")"
			}
			if s.Error != "" {
				line += ": " + s.Error
			}
			fmt.Println(line)
		}
		if r.Index >= 0 {
			fmt.Printf("  record %d\n", r.Index)
		}
		fmt.Println()
	}
	fmt.Printf("%d papers, %d created, %d changed\n", len(reports), result.Created, result.Changed)
}

// mustReadBatchFile reads a batch file, exits on error.
func mustReadBatchFile(path string) []integrate.Paper {
	f, err := os.Open(path)
	if err != nil {
		exitWithError(ExitDataError, "opening batch file: %v", err)
	}
	defer f.Close()

	papers, err := parseBatch(f)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	return papers
}

// parseBatch reads "title<TAB>doi" lines. The DOI column is optional. Lines
// starting with # and blank lines are skipped, but a row holding only a tab
// has two empty columns and is rejected.
func parseBatch(r io.Reader) ([]integrate.Paper, error) {
	var papers []integrate.Paper
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || (trimmed == "" && !strings.Contains(line, "\t")) {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) > 2 {
			return nil, fmt.Errorf("line %d: expected at most 2 tab-separated columns, got %d", lineNo, len(cols))
		}
		p := integrate.Paper{Title: strings.TrimSpace(cols[0])}
		if len(cols) == 2 {
			p.DOI = strings.TrimSpace(cols[1])
		}
		if p.Title == "" && p.DOI == "" {
			return nil, fmt.Errorf("line %d: empty title and DOI", lineNo)
		}
		papers = append(papers, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return papers, nil
}
