package missingness

import (
	"sort"

	"gomiss/domain/missing"
	"gomiss/domain/table"
)

// Profiler computes per-column and per-record missingness summaries.
// Pure function of the table snapshot, no side effects.
type Profiler struct{}

// NewProfiler creates a missingness profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Profile counts missing cells per column, derives the per-record missing
// pattern, and tallies how often each pattern co-occurs.
func (p *Profiler) Profile(t *table.Table) *missing.Profile {
	specs := t.Columns()
	total := t.NumRows()

	counts := make([]int, len(specs))
	patternCounts := make(map[string]*missing.PatternCount)
	recordPatterns := make([][]string, total)

	for r := 0; r < total; r++ {
		row := t.Row(r)
		var pattern []string
		for i, cell := range row {
			if cell.IsMissing() {
				counts[i]++
				pattern = append(pattern, specs[i].Name)
			}
		}
		sort.Strings(pattern)
		recordPatterns[r] = pattern

		pc := missing.PatternCount{Columns: pattern}
		key := pc.Key()
		if existing, ok := patternCounts[key]; ok {
			existing.Count++
		} else {
			pc.Count = 1
			patternCounts[key] = &pc
		}
	}

	profile := &missing.Profile{
		TotalRecords:   total,
		RecordPatterns: recordPatterns,
	}
	for i, spec := range specs {
		rate := 0.0
		if total > 0 {
			rate = float64(counts[i]) / float64(total)
		}
		profile.Columns = append(profile.Columns, missing.ColumnMissingness{
			Column:       spec.Name,
			MissingCount: counts[i],
			MissingRate:  rate,
		})
	}

	// Stable pattern order: most frequent first, ties by key.
	for _, pc := range patternCounts {
		profile.Patterns = append(profile.Patterns, *pc)
	}
	sort.Slice(profile.Patterns, func(i, j int) bool {
		if profile.Patterns[i].Count != profile.Patterns[j].Count {
			return profile.Patterns[i].Count > profile.Patterns[j].Count
		}
		return profile.Patterns[i].Key() < profile.Patterns[j].Key()
	})

	return profile
}
