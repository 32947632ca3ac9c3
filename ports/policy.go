package ports

import (
	"gomiss/domain/table"
)

// MissingPolicy is the swappable strategy for handling missing values
// ahead of descriptive statistics. Complete-case deletion is the one
// implementation today; an imputation policy can slot in later without
// touching the statistics code.
type MissingPolicy interface {
	Name() string

	// Resolve turns a raw column into the numeric values the statistics
	// will see, reporting how many entries were removed.
	Resolve(cells []table.Cell) (values []float64, removed int)
}
