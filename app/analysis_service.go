package app

import (
	"context"
	"errors"
	"time"

	descadapter "gomiss/adapters/stats/describe"
	"gomiss/adapters/stats/missingness"
	"gomiss/domain/core"
	"gomiss/domain/report"
	"gomiss/domain/table"
	"gomiss/internal"
	"gomiss/ports"
)

// AnalysisRequest defines the inputs for one batch analysis run
type AnalysisRequest struct {
	// Loading.
	Path              string
	Columns           []table.ColumnSpec
	CategoricalColumn string
	RequireNonEmpty   []string
	ExcludedRows      []int
	MissingMarkers    []string

	// Classification.
	TargetColumns     []string
	SignificanceLevel float64

	// Descriptive statistics.
	SummaryColumns   []string
	BesselCorrection bool
	HistogramBins    int
}

// AnalysisService wires loader, profiler, classifier and summarizer into
// the file-in/report-out pipeline and hands the report to the sinks.
type AnalysisService struct {
	loader     ports.TableLoaderPort
	profiler   *missingness.Profiler
	summarizer *descadapter.Summarizer
	sinks      []ports.ReportSinkPort
	log        *internal.Logger
}

// NewAnalysisService creates the orchestrating service
func NewAnalysisService(loader ports.TableLoaderPort, sinks ...ports.ReportSinkPort) *AnalysisService {
	return &AnalysisService{
		loader:     loader,
		profiler:   missingness.NewProfiler(),
		summarizer: descadapter.NewSummarizer(),
		sinks:      sinks,
		log:        internal.DefaultLogger,
	}
}

// Run executes load -> profile -> classify -> summarize -> report. Loader
// and table-shape failures abort the run; recoverable per-covariate and
// per-column failures are surfaced in the report's skipped list instead.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*report.AnalysisReport, error) {
	started := time.Now()

	alpha := req.SignificanceLevel
	if alpha == 0 {
		alpha = 0.05
	}
	bins := req.HistogramBins
	if bins == 0 {
		bins = 10
	}

	t, err := s.loader.Load(ctx, ports.LoadRequest{
		Path:              req.Path,
		Columns:           req.Columns,
		CategoricalColumn: req.CategoricalColumn,
		RequireNonEmpty:   req.RequireNonEmpty,
		ExcludedRows:      req.ExcludedRows,
		MissingMarkers:    req.MissingMarkers,
	})
	if err != nil {
		// The table is foundational; nothing downstream is meaningful.
		return nil, err
	}

	rep := report.NewAnalysisReport(req.Path, alpha, req.BesselCorrection)
	rep.Profile = s.profiler.Profile(t)
	for _, column := range t.EncodedColumns() {
		if code, ok := t.Code(column); ok {
			rep.CategoryLabels[column] = code.Labels()
		}
	}

	if len(req.TargetColumns) > 0 {
		classifier := missingness.NewClassifier(missingness.WithAlpha(alpha))
		verdicts, err := classifier.Classify(ctx, t, req.TargetColumns)
		if err != nil {
			if !errors.Is(err, core.ErrInsufficientData) {
				return nil, err
			}
			// A degenerate classification is reported, not fatal to the
			// descriptive half of the run.
			s.log.Warn("classification skipped: %v", err)
			rep.AddSkipped("classify", "", err.Error())
		} else {
			rep.Verdicts = verdicts
			for target, v := range verdicts {
				for _, skipped := range v.Skipped {
					rep.AddSkipped("classify", target+"/"+skipped.Column, skipped.Reason)
				}
			}
		}
	}

	if len(req.SummaryColumns) > 0 {
		opts := descadapter.Options{BesselCorrection: req.BesselCorrection}
		summaries, failures := s.summarizer.SummarizeBatch(t, req.SummaryColumns, opts)
		rep.Summaries = summaries
		for column, err := range failures {
			rep.AddSkipped("summarize", column, err.Error())
		}

		for _, column := range req.SummaryColumns {
			if _, ok := summaries[column]; !ok {
				continue
			}
			cells, err := t.Column(column)
			if err != nil {
				continue
			}
			h, err := descadapter.BuildHistogram(column, cells, bins, nil)
			if err != nil {
				rep.AddSkipped("summarize", column, err.Error())
				continue
			}
			rep.Histograms = append(rep.Histograms, h)
		}
	}

	for _, sink := range s.sinks {
		if err := sink.Render(ctx, rep); err != nil {
			return nil, err
		}
	}

	s.log.Info("analysis run %s finished in %dms", rep.RunID, time.Since(started).Milliseconds())
	return rep, nil
}
