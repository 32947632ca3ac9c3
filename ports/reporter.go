package ports

import (
	"context"

	"gomiss/domain/report"
)

// ReportSinkPort renders a finished analysis report for human consumption.
// Plotting and layout belong to the sink, not to the statistical core.
type ReportSinkPort interface {
	Render(ctx context.Context, rep *report.AnalysisReport) error
}
