package report

import (
	"gomiss/domain/core"
	"gomiss/domain/describe"
	"gomiss/domain/missing"
)

// SkippedItem records a column or covariate the pipeline could not process
// and the reason, so the report lists every exclusion explicitly.
type SkippedItem struct {
	Stage  string `json:"stage"` // "classify", "summarize"
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Histogram is plot-ready binned data for one column's complete cases.
// Rendering is the plotting collaborator's concern, not ours.
type Histogram struct {
	Column   string    `json:"column"`
	BinEdges []float64 `json:"bin_edges"` // len = len(Counts) + 1
	Counts   []int     `json:"counts"`
}

// AnalysisReport is the structured output of one analysis run: the
// missingness profile, the per-target verdicts with supporting p-values,
// the per-column descriptive summaries, and plot-ready handoff payloads.
type AnalysisReport struct {
	RunID     core.RunID     `json:"run_id"`
	CreatedAt core.Timestamp `json:"created_at"`
	Source    string         `json:"source"`

	Alpha  float64 `json:"alpha"`
	Bessel bool    `json:"bessel_correction"`

	Profile   *missing.Profile            `json:"profile"`
	Verdicts  map[string]missing.Verdict  `json:"verdicts"`
	Summaries map[string]describe.Summary `json:"summaries"`

	// CategoryLabels maps each encoded column to its code-ordered labels,
	// the side mapping retained by the loader for reporting.
	CategoryLabels map[string][]string `json:"category_labels,omitempty"`

	Histograms []Histogram   `json:"histograms,omitempty"`
	Skipped    []SkippedItem `json:"skipped,omitempty"`
}

// NewAnalysisReport creates a report shell for one run
func NewAnalysisReport(source string, alpha float64, bessel bool) *AnalysisReport {
	return &AnalysisReport{
		RunID:          core.NewRunID(),
		CreatedAt:      core.Now(),
		Source:         source,
		Alpha:          alpha,
		Bessel:         bessel,
		Verdicts:       make(map[string]missing.Verdict),
		Summaries:      make(map[string]describe.Summary),
		CategoryLabels: make(map[string][]string),
	}
}

// AddSkipped appends one exclusion record
func (r *AnalysisReport) AddSkipped(stage, column, reason string) {
	r.Skipped = append(r.Skipped, SkippedItem{Stage: stage, Column: column, Reason: reason})
}
