package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/papercat/papercat/internal/record"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	ListTitleMaxLen   = 60 // Used in list and search output
	DetailTitleMaxLen = 70 // Used in get command detail view

	DetailTextWrapWidth = 68
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecordResult is a record with its catalog position.
type RecordResult struct {
	Index  int           `json:"index"`
	Record record.Record `json:"record"`
}

// printRecordSummary prints a one-entry summary line.
func printRecordSummary(n int, idx int, rec record.Record) {
	doi := rec.DOI
	if doi == "" {
		doi = "-"
	}
	fmt.Printf("%d. [%d] %s\n", n, idx, truncateString(rec.Title, ListTitleMaxLen))
	fmt.Printf("   doi: %s  sources: %s\n\n", doi, strings.Join(labelledSources(rec), ", "))
}

// printRecordDetail prints every populated field of a record.
func printRecordDetail(idx int, rec record.Record) {
	fmt.Printf("[%d] %s\n", idx, truncateString(rec.Title, DetailTitleMaxLen))
	if rec.DOI != "" {
		fmt.Printf("DOI: %s\n", rec.DOI)
	}
	if rec.Abstract != "" {
		fmt.Printf("\nAbstract:\n  %s\n", wrapText(rec.Abstract, DetailTextWrapWidth, "  "))
	}

	for _, src := range record.AllSources {
		group := rec.Group(src)
		if !rec.HasLabels(src) {
			continue
		}
		fmt.Printf("\n%s:\n", record.GroupKey(src))
		for _, field := range record.Fields(src) {
			if labels := group[field]; len(labels) > 0 {
				fmt.Printf("  %s: %s\n", field, strings.Join(labels, "; "))
			}
		}
	}
}

// labelledSources lists the sources that contributed labels to rec.
func labelledSources(rec record.Record) []string {
	var out []string
	for _, src := range record.AllSources {
		if rec.HasLabels(src) {
			out = append(out, string(src))
		}
	}
	if len(out) == 0 {
		return []string{"none"}
	}
	return out
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}
