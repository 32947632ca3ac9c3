package table

import (
	"fmt"
	"math"

	"gomiss/domain/core"
)

// CellKind discriminates the tagged union stored in each table cell.
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumeric
	CellCategory
)

// Cell is a single tabular value: numeric, categorical code, or missing.
// Modeling cells as a tagged union removes the ambiguity of treating
// categorical codes as plain numbers without an explicit decision.
type Cell struct {
	Kind CellKind
	Num  float64
	Code int
}

// Numeric creates a numeric cell
func Numeric(v float64) Cell {
	return Cell{Kind: CellNumeric, Num: v}
}

// Category creates a categorical-code cell
func Category(code int) Cell {
	return Cell{Kind: CellCategory, Code: code}
}

// Missing creates a missing-marker cell
func Missing() Cell {
	return Cell{Kind: CellMissing}
}

// IsMissing reports whether the cell holds the missing marker
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Float returns the cell as a float64. Categorical codes are surfaced as
// their numeric code; a missing cell returns NaN. Treating codes as numbers
// is a documented modeling choice for the univariate regression step.
func (c Cell) Float() float64 {
	switch c.Kind {
	case CellNumeric:
		return c.Num
	case CellCategory:
		return float64(c.Code)
	default:
		return math.NaN()
	}
}

// ColumnKind is the semantic measurement level of a column. The kind
// determines which statistics are legal (mean/variance/skewness apply to
// interval and ratio columns only). Assigned once at load time.
type ColumnKind string

const (
	KindNominal  ColumnKind = "nominal"
	KindOrdinal  ColumnKind = "ordinal"
	KindInterval ColumnKind = "interval"
	KindRatio    ColumnKind = "ratio"
)

// Quantitative reports whether moment statistics are legal for this kind
func (k ColumnKind) Quantitative() bool {
	return k == KindInterval || k == KindRatio
}

// ParseColumnKind parses a kind tag as written in configuration
func ParseColumnKind(s string) (ColumnKind, error) {
	switch ColumnKind(s) {
	case KindNominal, KindOrdinal, KindInterval, KindRatio:
		return ColumnKind(s), nil
	}
	return "", fmt.Errorf("unknown column kind %q", s)
}

// ColumnSpec names a column and tags its measurement level
type ColumnSpec struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Key returns the column name as a domain key
func (s ColumnSpec) Key() core.ColumnKey {
	return core.ColumnKey(s.Name)
}

// CategoryCode is an injective, dense mapping from a column's distinct
// normalized categorical values to integers 0..k-1. Assignment is
// first-seen order in the source, which keeps the mapping deterministic
// for a given input file.
type CategoryCode struct {
	codes  map[string]int
	labels []string
}

// NewCategoryCode creates an empty mapping
func NewCategoryCode() *CategoryCode {
	return &CategoryCode{codes: make(map[string]int)}
}

// Encode returns the code for a normalized value, assigning the next dense
// code on first sight.
func (cc *CategoryCode) Encode(value string) int {
	if code, ok := cc.codes[value]; ok {
		return code
	}
	code := len(cc.labels)
	cc.codes[value] = code
	cc.labels = append(cc.labels, value)
	return code
}

// Lookup returns the code for a value without assigning a new one
func (cc *CategoryCode) Lookup(value string) (int, bool) {
	code, ok := cc.codes[value]
	return code, ok
}

// Label returns the original string for a code
func (cc *CategoryCode) Label(code int) (string, bool) {
	if code < 0 || code >= len(cc.labels) {
		return "", false
	}
	return cc.labels[code], true
}

// Labels returns all labels in code order
func (cc *CategoryCode) Labels() []string {
	out := make([]string, len(cc.labels))
	copy(out, cc.labels)
	return out
}

// Len returns the number of distinct codes
func (cc *CategoryCode) Len() int {
	return len(cc.labels)
}

// Validate checks the injective-and-dense invariant. The map construction
// makes a violation impossible in normal use, but the check is cheap and
// the loader is required to run it.
func (cc *CategoryCode) Validate() error {
	if len(cc.codes) != len(cc.labels) {
		return fmt.Errorf("code table has %d entries for %d labels", len(cc.codes), len(cc.labels))
	}
	seen := make(map[int]bool, len(cc.codes))
	for value, code := range cc.codes {
		if code < 0 || code >= len(cc.labels) {
			return fmt.Errorf("value %q mapped outside dense range: %d", value, code)
		}
		if seen[code] {
			return fmt.Errorf("code %d assigned to more than one value", code)
		}
		if cc.labels[code] != value {
			return fmt.Errorf("value %q disagrees with label table at code %d", value, code)
		}
		seen[code] = true
	}
	return nil
}
