package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gomiss/domain/report"

	"github.com/xuri/excelize/v2"
)

// ExcelSink writes the report as a workbook with one sheet per section,
// for consumers who want the tables in spreadsheet form. Implements
// ports.ReportSinkPort.
type ExcelSink struct {
	path string
}

// NewExcelSink creates a workbook renderer saving to path
func NewExcelSink(path string) *ExcelSink {
	return &ExcelSink{path: path}
}

// Render writes and saves the workbook
func (s *ExcelSink) Render(ctx context.Context, rep *report.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeProfileSheet(f, rep); err != nil {
		return err
	}
	if err := s.writeVerdictSheet(f, rep); err != nil {
		return err
	}
	if err := s.writeSummarySheet(f, rep); err != nil {
		return err
	}
	if err := s.writeHistogramSheet(f, rep); err != nil {
		return err
	}

	// Replace the default sheet with our first section.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (s *ExcelSink) writeProfileSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Profile"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "column", "missing_count", "missing_rate"); err != nil {
		return err
	}
	if rep.Profile == nil {
		return nil
	}
	row := 2
	for _, col := range rep.Profile.Columns {
		if err := setRow(f, sheet, row, col.Column, col.MissingCount, col.MissingRate); err != nil {
			return err
		}
		row++
	}
	row++
	if err := setRow(f, sheet, row, "pattern", "records"); err != nil {
		return err
	}
	row++
	for _, pc := range rep.Profile.Patterns {
		pattern := "(complete)"
		if len(pc.Columns) > 0 {
			pattern = strings.Join(pc.Columns, ", ")
		}
		if err := setRow(f, sheet, row, pattern, pc.Count); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (s *ExcelSink) writeVerdictSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Verdicts"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "target", "mechanism", "global_p", "covariate", "covariate_p"); err != nil {
		return err
	}
	row := 2
	for _, target := range sortedKeys(rep.Verdicts) {
		v := rep.Verdicts[target]
		for _, cov := range sortedKeys(v.CovariateP) {
			p := v.CovariateP[cov]
			var cell interface{} = p
			if math.IsNaN(p) {
				cell = "excluded"
			}
			if err := setRow(f, sheet, row, v.Target, string(v.Mechanism), v.GlobalP, cov, cell); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (s *ExcelSink) writeSummarySheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Summaries"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "column", "n", "removed", "mean", "variance", "skewness", "skewness_corrected", "min", "median", "max"); err != nil {
		return err
	}
	row := 2
	for _, column := range sortedKeys(rep.Summaries) {
		sum := rep.Summaries[column]
		if err := setRow(f, sheet, row, sum.Column, sum.N, sum.Removed, sum.Mean, sum.Variance,
			sum.Skewness, sum.SkewnessCorrected, sum.Min, sum.Median, sum.Max); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (s *ExcelSink) writeHistogramSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Histograms"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "column", "bin_low", "bin_high", "count"); err != nil {
		return err
	}
	row := 2
	for _, h := range rep.Histograms {
		for i, count := range h.Counts {
			if err := setRow(f, sheet, row, h.Column, h.BinEdges[i], h.BinEdges[i+1], count); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
