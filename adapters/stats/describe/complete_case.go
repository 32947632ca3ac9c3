package describe

import (
	"gomiss/domain/table"
)

// CompleteCase is the complete-case deletion policy: records whose value
// is the missing marker are discarded before any statistic is computed,
// and the removed count is reported for transparency.
type CompleteCase struct{}

// NewCompleteCase creates the complete-case deletion policy
func NewCompleteCase() *CompleteCase {
	return &CompleteCase{}
}

// Name identifies the policy in reports
func (p *CompleteCase) Name() string {
	return "complete-case"
}

// Resolve keeps the observed numeric values and counts the discarded cells
func (p *CompleteCase) Resolve(cells []table.Cell) ([]float64, int) {
	values := make([]float64, 0, len(cells))
	removed := 0
	for _, cell := range cells {
		if cell.IsMissing() {
			removed++
			continue
		}
		values = append(values, cell.Float())
	}
	return values, removed
}
