package table

import (
	"fmt"

	"gomiss/domain/core"
)

// Table is an ordered sequence of records sharing one column set. It is
// produced once by the loader and treated as an immutable snapshot by
// every downstream consumer; derived tables are new values.
type Table struct {
	specs []ColumnSpec
	index map[string]int
	rows  [][]Cell
	codes map[string]*CategoryCode
}

// New creates an empty table with the given column specs
func New(specs []ColumnSpec) (*Table, error) {
	index := make(map[string]int, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", spec.Name)
		}
		index[spec.Name] = i
	}
	return &Table{
		specs: specs,
		index: index,
		codes: make(map[string]*CategoryCode),
	}, nil
}

// Append adds one record. The record must match the column set exactly.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.specs) {
		return fmt.Errorf("record has %d cells, table has %d columns", len(row), len(t.specs))
	}
	t.rows = append(t.rows, row)
	return nil
}

// NumRows returns the record count
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.specs)
}

// Columns returns the column specs in schema order
func (t *Table) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

// ColumnNames returns the column names in schema order
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.Name
	}
	return out
}

// Spec returns the spec for a named column
func (t *Table) Spec(name string) (ColumnSpec, bool) {
	i, ok := t.index[name]
	if !ok {
		return ColumnSpec{}, false
	}
	return t.specs[i], true
}

// Row returns the i-th record. Callers must not mutate it.
func (t *Table) Row(i int) []Cell {
	return t.rows[i]
}

// Column returns a copy of the named column as cells
func (t *Table) Column(name string) ([]Cell, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewDataFormatError(name)
	}
	out := make([]Cell, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// FloatColumn returns the named column as float64 values with NaN standing
// in for missing cells. Categorical codes come through as their numeric
// code value.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c.Float()
	}
	return out, nil
}

// SetCode attaches the code-to-label side mapping for an encoded column
func (t *Table) SetCode(column string, cc *CategoryCode) {
	t.codes[column] = cc
}

// Code returns the side mapping for an encoded column, if any
func (t *Table) Code(column string) (*CategoryCode, bool) {
	cc, ok := t.codes[column]
	return cc, ok
}

// EncodedColumns returns the names of columns carrying a category code
func (t *Table) EncodedColumns() []string {
	out := make([]string, 0, len(t.codes))
	for _, s := range t.specs {
		if _, ok := t.codes[s.Name]; ok {
			out = append(out, s.Name)
		}
	}
	return out
}
