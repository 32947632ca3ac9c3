package report

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomiss/domain/describe"
	"gomiss/domain/missing"
	"gomiss/domain/report"
)

func sampleReport() *report.AnalysisReport {
	rep := report.NewAnalysisReport("survey.csv", 0.05, false)
	rep.Profile = &missing.Profile{
		TotalRecords: 100,
		Columns: []missing.ColumnMissingness{
			{Column: "pct_fsm", MissingCount: 20, MissingRate: 0.2},
			{Column: "num_pupils", MissingCount: 0, MissingRate: 0},
		},
		Patterns: []missing.PatternCount{
			{Columns: nil, Count: 80},
			{Columns: []string{"pct_fsm"}, Count: 20},
		},
	}
	rep.Verdicts["pct_fsm"] = missing.Verdict{
		Target:     "pct_fsm",
		Mechanism:  missing.MechanismMAR,
		Alpha:      0.05,
		GlobalP:    0.0001,
		GlobalStat: 42.7,
		GlobalDF:   3,
		CovariateP: map[string]float64{
			"num_pupils":  0.001,
			"school_type": math.NaN(),
		},
		Skipped: []missing.SkippedCovariate{
			{Column: "school_type", Reason: "separation detected for covariate school_type"},
		},
	}
	rep.Summaries["pct_fsm"] = describe.Summary{
		Column: "pct_fsm", N: 80, Removed: 20, Policy: "complete-case",
		Mean: 22.1, Variance: 130.5, Skewness: 0.4, SkewnessCorrected: 0.39,
		Min: 0, Max: 55.3, Median: 21.0,
	}
	rep.CategoryLabels["school_type"] = []string{"primary", "secondary"}
	rep.AddSkipped("summarize", "attendance_rate", "zero variance, skewness undefined")
	return rep
}

func TestRenderMarkdown_Sections(t *testing.T) {
	out := RenderMarkdown(sampleReport())

	assert.Contains(t, out, "# Missingness analysis report")
	assert.Contains(t, out, "## Missingness profile")
	assert.Contains(t, out, "| pct_fsm | 20 | 20.0% |")
	assert.Contains(t, out, "| (complete) | 80 |")
	assert.Contains(t, out, "### pct_fsm: MAR")
	assert.Contains(t, out, "df=3")
	assert.Contains(t, out, "| school_type | (excluded) |")
	assert.Contains(t, out, "Missingness is predictable from: num_pupils.")
	assert.Contains(t, out, "## Descriptive statistics")
	assert.Contains(t, out, "## Category encodings")
	assert.Contains(t, out, "| 1 | secondary |")
	assert.Contains(t, out, "## Skipped")
	assert.Contains(t, out, "attendance_rate")
}

func TestRenderMarkdown_EmptySectionsOmitted(t *testing.T) {
	rep := report.NewAnalysisReport("x.csv", 0.05, true)
	out := RenderMarkdown(rep)

	assert.Contains(t, out, "Significance level: 0.05")
	assert.NotContains(t, out, "## Missingness profile")
	assert.NotContains(t, out, "## Missingness mechanism")
	assert.NotContains(t, out, "## Descriptive statistics")
	assert.NotContains(t, out, "## Skipped")
}

func TestMarkdownSink_Render(t *testing.T) {
	var buf bytes.Buffer
	sink := NewMarkdownSink(&buf)
	require.NoError(t, sink.Render(context.Background(), sampleReport()))
	assert.True(t, strings.HasPrefix(buf.String(), "# Missingness analysis report"))
}

func TestHTMLSink_Render(t *testing.T) {
	var buf bytes.Buffer
	sink := NewHTMLSink(&buf)
	require.NoError(t, sink.Render(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "pct_fsm")
}
