package describe

import (
	"math"

	"gomiss/domain/core"
	"gomiss/domain/describe"
	"gomiss/domain/table"
	"gomiss/internal"
	"gomiss/ports"

	"github.com/montanaflynn/stats"
)

// Options selects the missing-value policy and the small-sample skewness
// branch. A nil Policy defaults to complete-case deletion.
type Options struct {
	BesselCorrection bool
	Policy           ports.MissingPolicy
}

// Summarizer computes closed-form descriptive statistics for ratio and
// interval columns under an explicit missing-value policy.
type Summarizer struct {
	log *internal.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{log: internal.DefaultLogger}
}

// Summarize computes mean, population variance and skewness over one
// column's cells. Every statistic takes its inputs explicitly - the mean
// feeding the variance is always the one computed here, never a module
// default.
func (s *Summarizer) Summarize(column string, cells []table.Cell, opts Options) (describe.Summary, error) {
	policy := opts.Policy
	if policy == nil {
		policy = NewCompleteCase()
	}

	values, removed := policy.Resolve(cells)
	n := len(values)
	if n < 2 {
		return describe.Summary{}, core.NewDegenerateSampleError(column, "fewer than two observed values")
	}

	// The mean is the closed-form minimizer of the sum of squared
	// deviations; the arithmetic mean and the minimization formulation
	// coincide exactly.
	mean, err := stats.Mean(values)
	if err != nil {
		return describe.Summary{}, core.NewDegenerateSampleError(column, err.Error())
	}

	variance := PopulationVariance(values, mean)
	if variance == 0 {
		return describe.Summary{}, core.NewDegenerateSampleError(column, "zero variance, skewness undefined")
	}

	g1 := Skewness(values, mean, variance)
	corrected := correctedSkewness(g1, values, mean, n, opts.BesselCorrection)

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)

	return describe.Summary{
		Column:            column,
		N:                 n,
		Removed:           removed,
		Policy:            policy.Name(),
		Mean:              mean,
		Variance:          variance,
		Skewness:          g1,
		SkewnessCorrected: corrected,
		Min:               min,
		Max:               max,
		Median:            median,
	}, nil
}

// SummarizeBatch summarizes several columns of a table. Quantitative kind
// is enforced per column; a degenerate column is reported in the error map
// and never aborts its siblings.
func (s *Summarizer) SummarizeBatch(t *table.Table, columns []string, opts Options) (map[string]describe.Summary, map[string]error) {
	summaries := make(map[string]describe.Summary, len(columns))
	failures := make(map[string]error)

	for _, column := range columns {
		spec, ok := t.Spec(column)
		if !ok {
			failures[column] = core.NewDataFormatError(column)
			continue
		}
		if !spec.Kind.Quantitative() {
			failures[column] = core.NewDegenerateSampleError(column, "mean/variance/skewness are not defined for "+string(spec.Kind)+" columns")
			continue
		}
		cells, err := t.Column(column)
		if err != nil {
			failures[column] = err
			continue
		}
		summary, err := s.Summarize(column, cells, opts)
		if err != nil {
			s.log.Warn("summary for %s failed: %v", column, err)
			failures[column] = err
			continue
		}
		summaries[column] = summary
	}
	return summaries, failures
}

// PopulationVariance is (1/n) * sum((x - mu)^2) about an explicitly
// supplied center.
func PopulationVariance(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mu
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// Skewness is the third standardized moment g1 = m3 / m2^(3/2), with the
// population variance m2 supplied explicitly.
func Skewness(values []float64, mu, m2 float64) float64 {
	if m2 <= 0 || len(values) == 0 {
		return math.NaN()
	}
	m3 := 0.0
	for _, v := range values {
		d := v - mu
		m3 += d * d * d
	}
	m3 /= float64(len(values))
	return m3 / math.Pow(m2, 1.5)
}

// correctedSkewness computes the caller-selected small-sample branch:
// bessel=true scales g1 by ((n-1)/n)^(3/2); bessel=false divides the third
// moment by the unbiased-variance-derived denominator s^3 instead.
func correctedSkewness(g1 float64, values []float64, mu float64, n int, bessel bool) float64 {
	nf := float64(n)
	if bessel {
		return math.Pow((nf-1)/nf, 1.5) * g1
	}
	m3 := 0.0
	sumSq := 0.0
	for _, v := range values {
		d := v - mu
		sumSq += d * d
		m3 += d * d * d
	}
	m3 /= nf
	s2 := sumSq / (nf - 1)
	if s2 <= 0 {
		return math.NaN()
	}
	return m3 / math.Pow(s2, 1.5)
}
