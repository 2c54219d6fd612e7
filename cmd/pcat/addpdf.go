package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/papercat/papercat/internal/config"
	"github.com/papercat/papercat/internal/crossref"
	"github.com/papercat/papercat/internal/integrate"
	"github.com/papercat/papercat/internal/pdf"
	"github.com/spf13/cobra"
)

var (
	addPDFTitle string
	addPDFDOI   string
)

func init() {
	addPDFCmd.Flags().StringVar(&addPDFTitle, "title", "", "Override the title read from the PDF")
	addPDFCmd.Flags().StringVar(&addPDFDOI, "doi", "", "Override the DOI read from the PDF")
	rootCmd.AddCommand(addPDFCmd)
}

var addPDFCmd = &cobra.Command{
	Use:   "add-pdf <file>",
	Short: "Integrate a paper identified from its PDF",
	Long: `Read a DOI and a title from the first pages of a PDF, then run the
integration pipeline for that paper.

When the PDF yields a DOI but no usable title, the title is taken from
Crossref. Use --title or --doi to override what was extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddPDF,
}

func runAddPDF(cmd *cobra.Command, args []string) error {
	id, err := pdf.Identify(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading PDF: %v", err)
	}
	if addPDFTitle != "" {
		id.Title = addPDFTitle
	}
	if addPDFDOI != "" {
		id.DOI = addPDFDOI
	}

	repoRoot := mustFindRepository()

	if strings.TrimSpace(id.Title) == "" && id.DOI != "" {
		id.Title = lookupTitle(repoRoot, id.DOI)
	}
	if strings.TrimSpace(id.Title) == "" {
		exitWithError(ExitDataError, "no title found in %s (use --title)", args[0])
	}

	if humanOutput {
		fmt.Printf("Identified: %s (doi: %s)\n\n", id.Title, orDash(id.DOI))
	}

	reports := runPipeline(repoRoot, []integrate.Paper{{Title: id.Title, DOI: id.DOI}})
	outputIntegrateResult(reports)
	return nil
}

// lookupTitle asks Crossref for the title registered under doi.
func lookupTitle(repoRoot, doi string) string {
	cfg := mustLoadConfig(repoRoot)
	client := crossref.NewClient(crossref.WithMailto(config.GetMailto(cfg)))

	work, err := client.GetWork(context.Background(), doi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: crossref title lookup for %s: %v\n", doi, err)
		return ""
	}
	if work == nil || len(work.Title) == 0 {
		return ""
	}
	return work.Title[0]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
