package integrate

import "github.com/papercat/papercat/internal/record"

// Status is the outcome of one source for one paper.
type Status string

const (
	StatusUpdated   Status = "updated"   // the catalog changed
	StatusUnchanged Status = "unchanged" // data returned, nothing new
	StatusNoData    Status = "no_data"   // the source had no result
	StatusError     Status = "error"     // the source failed; treated as no data
	StatusSkipped   Status = "skipped"   // merge refused, e.g. blank title
)

// Step records one adapter run.
type Step struct {
	Source  record.Source `json:"source"`
	Status  Status        `json:"status"`
	Index   int           `json:"index"`
	Created bool          `json:"created,omitempty"`
	Filled  []string      `json:"filled,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Report summarizes a paper's integration.
type Report struct {
	Title   string `json:"title"`
	DOI     string `json:"doi,omitempty"`
	Index   int    `json:"index"` // final record index, -1 if none
	Created bool   `json:"created"`
	Changed bool   `json:"changed"`
	Steps   []Step `json:"steps"`
}

// Failed returns the steps whose source errored.
func (r Report) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Status == StatusError {
			out = append(out, s)
		}
	}
	return out
}

// Step returns the step for src, if it ran.
func (r Report) Step(src record.Source) (Step, bool) {
	for _, s := range r.Steps {
		if s.Source == src {
			return s, true
		}
	}
	return Step{}, false
}
