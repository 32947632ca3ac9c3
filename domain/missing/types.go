package missing

import (
	"math"
	"sort"
	"strings"
)

// Mechanism classifies why values are missing in a column
type Mechanism string

const (
	// MechanismMCAR - missingness independent of all data, observed and unobserved
	MechanismMCAR Mechanism = "MCAR"
	// MechanismMAR - missingness depends only on observed covariates
	MechanismMAR Mechanism = "MAR"
	// MechanismMNAR - missingness depends on unobserved data or the value itself
	MechanismMNAR Mechanism = "MNAR"
)

// ColumnMissingness summarizes missing values for one column
type ColumnMissingness struct {
	Column       string  `json:"column"`
	MissingCount int     `json:"missing_count"`
	MissingRate  float64 `json:"missing_rate"`
}

// PatternCount is one distinct per-record missingness pattern and its frequency
type PatternCount struct {
	Columns []string `json:"columns"` // sorted column names missing together
	Count   int      `json:"count"`
}

// Key returns a stable identifier for the pattern
func (p PatternCount) Key() string {
	return strings.Join(p.Columns, "|")
}

// Profile is the per-table missingness summary: per-column counts and
// rates plus the co-occurrence of missing cells across columns. Derived
// and read-only; recomputed whenever the underlying table changes.
type Profile struct {
	TotalRecords   int                 `json:"total_records"`
	Columns        []ColumnMissingness `json:"columns"`
	Patterns       []PatternCount      `json:"patterns"`
	RecordPatterns [][]string          `json:"record_patterns,omitempty"`
}

// Rate returns the missing rate for a named column, or 0 if unknown
func (p *Profile) Rate(column string) float64 {
	for _, c := range p.Columns {
		if c.Column == column {
			return c.MissingRate
		}
	}
	return 0
}

// ColumnsWithMissing returns the names of columns that have at least one
// missing value, in schema order.
func (p *Profile) ColumnsWithMissing() []string {
	var out []string
	for _, c := range p.Columns {
		if c.MissingCount > 0 {
			out = append(out, c.Column)
		}
	}
	return out
}

// SkippedCovariate records a covariate excluded from the decision rule
// and why, so the report can list it explicitly.
type SkippedCovariate struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Verdict is the classification result for one target column, with the
// supporting evidence: the global test p-value and the per-covariate
// p-value vector. Produced fresh per analysis run, never mutated.
type Verdict struct {
	Target     string             `json:"target"`
	Mechanism  Mechanism          `json:"mechanism"`
	Alpha      float64            `json:"alpha"`
	GlobalP    float64            `json:"global_p"`
	GlobalStat float64            `json:"global_stat"`
	GlobalDF   int                `json:"global_df"`
	CovariateP map[string]float64 `json:"covariate_p"` // NaN marks an excluded fit
	Skipped    []SkippedCovariate `json:"skipped,omitempty"`
}

// SignificantCovariates returns covariates whose p-value fell below alpha,
// sorted by name for reproducible reporting. NaN entries never qualify.
func (v Verdict) SignificantCovariates() []string {
	var out []string
	for col, p := range v.CovariateP {
		if !math.IsNaN(p) && p < v.Alpha {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}

// Decide applies the decision rule to a global p-value and a vector of
// per-covariate p-values. The boundary case p == alpha falls on the
// non-significant branch. NaN covariate entries are excluded.
func Decide(globalP float64, covariateP map[string]float64, alpha float64) Mechanism {
	if globalP >= alpha {
		return MechanismMCAR
	}
	for _, p := range covariateP {
		if !math.IsNaN(p) && p < alpha {
			return MechanismMAR
		}
	}
	return MechanismMNAR
}
