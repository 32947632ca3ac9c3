package ports

import (
	"context"

	"gomiss/domain/table"
)

// LoadRequest describes one table ingestion: which columns to retain (with
// their measurement levels), which rows to drop, and which categorical
// column to normalize and encode.
type LoadRequest struct {
	// Path to the delimited source file (.csv or .xlsx).
	Path string

	// Columns to project, in output schema order.
	Columns []table.ColumnSpec

	// CategoricalColumn names the one column whose text values are
	// lower-cased and replaced by dense integer codes. Empty disables
	// encoding.
	CategoricalColumn string

	// RequireNonEmpty lists columns whose records are dropped when the raw
	// cell is the empty string. Applied in order, before encoding.
	RequireNonEmpty []string

	// ExcludedRows drops records at fixed ordinals (0-based, counted over
	// data rows after the header). Models removal of known-bad records;
	// explicit here so it never gets silently baked in.
	ExcludedRows []int

	// MissingMarkers are the raw tokens treated as the missing marker,
	// matched case-insensitively. Empty string is always a marker.
	MissingMarkers []string
}

// TableLoaderPort ingests a raw row source into an immutable domain table
type TableLoaderPort interface {
	Load(ctx context.Context, req LoadRequest) (*table.Table, error)
}
