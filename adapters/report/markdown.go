package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gomiss/domain/report"
)

// MarkdownSink renders an analysis report as a markdown document.
// Implements ports.ReportSinkPort.
type MarkdownSink struct {
	w io.Writer
}

// NewMarkdownSink creates a markdown renderer writing to w
func NewMarkdownSink(w io.Writer) *MarkdownSink {
	return &MarkdownSink{w: w}
}

// Render writes the full report
func (s *MarkdownSink) Render(ctx context.Context, rep *report.AnalysisReport) error {
	_, err := io.WriteString(s.w, RenderMarkdown(rep))
	return err
}

// RenderMarkdown builds the markdown document for a report
func RenderMarkdown(rep *report.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Missingness analysis report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", rep.RunID)
	fmt.Fprintf(&b, "- Created: %s\n", rep.CreatedAt)
	fmt.Fprintf(&b, "- Source: `%s`\n", rep.Source)
	fmt.Fprintf(&b, "- Significance level: %g\n", rep.Alpha)
	fmt.Fprintf(&b, "- Bessel-type skewness correction: %t\n\n", rep.Bessel)

	if rep.Profile != nil {
		writeProfile(&b, rep)
	}
	if len(rep.Verdicts) > 0 {
		writeVerdicts(&b, rep)
	}
	if len(rep.Summaries) > 0 {
		writeSummaries(&b, rep)
	}
	if len(rep.CategoryLabels) > 0 {
		writeCategoryLabels(&b, rep)
	}
	if len(rep.Skipped) > 0 {
		writeSkipped(&b, rep)
	}
	return b.String()
}

func writeProfile(b *strings.Builder, rep *report.AnalysisReport) {
	fmt.Fprintf(b, "## Missingness profile\n\n")
	fmt.Fprintf(b, "%d records.\n\n", rep.Profile.TotalRecords)
	fmt.Fprintf(b, "| column | missing | rate |\n|---|---:|---:|\n")
	for _, col := range rep.Profile.Columns {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", col.Column, col.MissingCount, col.MissingRate*100)
	}
	fmt.Fprintf(b, "\n### Co-occurring patterns\n\n")
	fmt.Fprintf(b, "| pattern | records |\n|---|---:|\n")
	for _, pc := range rep.Profile.Patterns {
		pattern := "(complete)"
		if len(pc.Columns) > 0 {
			pattern = strings.Join(pc.Columns, ", ")
		}
		fmt.Fprintf(b, "| %s | %d |\n", pattern, pc.Count)
	}
	fmt.Fprintf(b, "\n")
}

func writeVerdicts(b *strings.Builder, rep *report.AnalysisReport) {
	fmt.Fprintf(b, "## Missingness mechanism\n\n")
	for _, target := range sortedKeys(rep.Verdicts) {
		v := rep.Verdicts[target]
		fmt.Fprintf(b, "### %s: %s\n\n", target, v.Mechanism)
		fmt.Fprintf(b, "Global MCAR test: chi2=%.4f, df=%d, p=%.4g.\n\n", v.GlobalStat, v.GlobalDF, v.GlobalP)
		fmt.Fprintf(b, "| covariate | p-value |\n|---|---:|\n")
		for _, cov := range sortedKeys(v.CovariateP) {
			p := v.CovariateP[cov]
			if math.IsNaN(p) {
				fmt.Fprintf(b, "| %s | (excluded) |\n", cov)
			} else {
				fmt.Fprintf(b, "| %s | %.4g |\n", cov, p)
			}
		}
		if sig := v.SignificantCovariates(); len(sig) > 0 {
			fmt.Fprintf(b, "\nMissingness is predictable from: %s.\n", strings.Join(sig, ", "))
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeSummaries(b *strings.Builder, rep *report.AnalysisReport) {
	fmt.Fprintf(b, "## Descriptive statistics\n\n")
	fmt.Fprintf(b, "| column | n | removed | mean | variance | skewness | skewness (corrected) | min | median | max |\n")
	fmt.Fprintf(b, "|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, column := range sortedKeys(rep.Summaries) {
		s := rep.Summaries[column]
		fmt.Fprintf(b, "| %s | %d | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			s.Column, s.N, s.Removed, s.Mean, s.Variance, s.Skewness, s.SkewnessCorrected, s.Min, s.Median, s.Max)
	}
	fmt.Fprintf(b, "\nMissing-value policy: complete-case deletion; removed counts are per column.\n\n")
}

func writeCategoryLabels(b *strings.Builder, rep *report.AnalysisReport) {
	fmt.Fprintf(b, "## Category encodings\n\n")
	columns := make([]string, 0, len(rep.CategoryLabels))
	for column := range rep.CategoryLabels {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		fmt.Fprintf(b, "### %s\n\n| code | label |\n|---:|---|\n", column)
		for code, label := range rep.CategoryLabels[column] {
			fmt.Fprintf(b, "| %d | %s |\n", code, label)
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeSkipped(b *strings.Builder, rep *report.AnalysisReport) {
	fmt.Fprintf(b, "## Skipped\n\n| stage | column | reason |\n|---|---|---|\n")
	for _, item := range rep.Skipped {
		fmt.Fprintf(b, "| %s | %s | %s |\n", item.Stage, item.Column, item.Reason)
	}
	fmt.Fprintf(b, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
