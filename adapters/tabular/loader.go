package tabular

import (
	"context"
	"strconv"
	"strings"

	"gomiss/domain/core"
	"gomiss/domain/table"
	"gomiss/internal"
	"gomiss/ports"
)

// Loader ingests a raw row source into an immutable domain table: column
// projection, ordered row filters, categorical normalization and dense
// integer encoding. Implements ports.TableLoaderPort.
type Loader struct {
	log *internal.Logger
}

// NewLoader creates a table loader
func NewLoader() *Loader {
	return &Loader{log: internal.DefaultLogger}
}

// Load reads, projects, filters and encodes the requested table
func (l *Loader) Load(ctx context.Context, req ports.LoadRequest) (*table.Table, error) {
	raw, err := NewFileReader(req.Path).Read()
	if err != nil {
		return nil, err
	}
	return l.build(ctx, raw, req)
}

// build assembles the domain table from pre-read raw rows
func (l *Loader) build(ctx context.Context, raw *RawTable, req ports.LoadRequest) (*table.Table, error) {
	// Projection: every requested column must exist in the source.
	for _, spec := range req.Columns {
		if !raw.HasColumn(spec.Name) {
			return nil, core.NewDataFormatError(spec.Name)
		}
	}
	if req.CategoricalColumn != "" {
		found := false
		for _, spec := range req.Columns {
			if spec.Name == req.CategoricalColumn {
				found = true
				break
			}
		}
		if !found {
			return nil, core.NewDataFormatError(req.CategoricalColumn)
		}
	}

	markers := markerSet(req.MissingMarkers)
	excluded := make(map[int]bool, len(req.ExcludedRows))
	for _, ordinal := range req.ExcludedRows {
		excluded[ordinal] = true
	}

	// Row filters apply in order and short-circuit: fixed-ordinal
	// exclusions first, then the non-empty predicates.
	var kept []RawRow
	dropped := 0
	for ordinal, row := range raw.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if excluded[ordinal] {
			dropped++
			continue
		}
		pass := true
		for _, column := range req.RequireNonEmpty {
			if strings.TrimSpace(row[column]) == "" {
				pass = false
				break
			}
		}
		if !pass {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	l.log.Debug("loader kept %d rows, dropped %d", len(kept), dropped)

	// Encoding pass: assign dense codes in first-seen order over the kept
	// rows so the mapping is deterministic for a given source.
	var code *table.CategoryCode
	if req.CategoricalColumn != "" {
		code = table.NewCategoryCode()
		for _, row := range kept {
			value := normalizeCategory(row[req.CategoricalColumn])
			if isMissing(value, markers) {
				continue
			}
			code.Encode(value)
		}
		if err := code.Validate(); err != nil {
			return nil, core.NewEncodingError(req.CategoricalColumn, err.Error())
		}
	}

	t, err := table.New(req.Columns)
	if err != nil {
		return nil, err
	}

	unparseable := 0
	for _, row := range kept {
		cells := make([]table.Cell, len(req.Columns))
		for i, spec := range req.Columns {
			rawValue := row[spec.Name]
			if spec.Name == req.CategoricalColumn {
				value := normalizeCategory(rawValue)
				if isMissing(value, markers) {
					cells[i] = table.Missing()
					continue
				}
				// Lookup cannot miss: the encoding pass saw every kept row.
				c, ok := code.Lookup(value)
				if !ok {
					return nil, core.NewEncodingError(spec.Name, "value "+value+" missing from code table")
				}
				cells[i] = table.Category(c)
				continue
			}
			value := strings.TrimSpace(rawValue)
			if isMissing(strings.ToLower(value), markers) {
				cells[i] = table.Missing()
				continue
			}
			num, err := strconv.ParseFloat(value, 64)
			if err != nil {
				unparseable++
				cells[i] = table.Missing()
				continue
			}
			cells[i] = table.Numeric(num)
		}
		if err := t.Append(cells); err != nil {
			return nil, err
		}
	}
	if unparseable > 0 {
		l.log.Warn("loader treated %d unparseable numeric cells as missing", unparseable)
	}

	if code != nil {
		t.SetCode(req.CategoricalColumn, code)
	}
	return t, nil
}

// normalizeCategory lower-cases and trims a categorical value
func normalizeCategory(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func markerSet(markers []string) map[string]bool {
	set := map[string]bool{"": true}
	for _, m := range markers {
		set[strings.ToLower(strings.TrimSpace(m))] = true
	}
	return set
}

func isMissing(normalized string, markers map[string]bool) bool {
	return markers[normalized]
}
