package describe

import (
	"gomiss/domain/core"
	"gomiss/domain/report"
	"gomiss/domain/table"
	"gomiss/ports"
)

// BuildHistogram bins a column's complete cases into equal-width intervals
// as a plot-ready handoff for the external plotting collaborator. The last
// bin is closed on both ends so the maximum lands inside it.
func BuildHistogram(column string, cells []table.Cell, bins int, policy ports.MissingPolicy) (report.Histogram, error) {
	if bins < 1 {
		return report.Histogram{}, core.NewDegenerateSampleError(column, "histogram needs at least one bin")
	}
	if policy == nil {
		policy = NewCompleteCase()
	}
	values, _ := policy.Resolve(cells)
	if len(values) == 0 {
		return report.Histogram{}, core.NewDegenerateSampleError(column, "no observed values")
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		// Single-valued column: one bin around the value.
		return report.Histogram{
			Column:   column,
			BinEdges: []float64{min, max},
			Counts:   []int{len(values)},
		}, nil
	}

	width := (max - min) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	return report.Histogram{Column: column, BinEdges: edges, Counts: counts}, nil
}
