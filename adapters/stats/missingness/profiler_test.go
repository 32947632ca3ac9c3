package missingness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomiss/domain/table"
)

func buildProfileTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.ColumnSpec{
		{Name: "a", Kind: table.KindRatio},
		{Name: "b", Kind: table.KindRatio},
		{Name: "c", Kind: table.KindRatio},
	})
	require.NoError(t, err)

	rows := [][]table.Cell{
		{table.Numeric(1), table.Numeric(1), table.Numeric(1)},
		{table.Numeric(2), table.Missing(), table.Numeric(2)},
		{table.Numeric(3), table.Missing(), table.Numeric(3)},
		{table.Missing(), table.Missing(), table.Numeric(4)},
		{table.Numeric(5), table.Numeric(5), table.Numeric(5)},
	}
	for _, row := range rows {
		require.NoError(t, tbl.Append(row))
	}
	return tbl
}

func TestProfiler_CountsAndRates(t *testing.T) {
	profile := NewProfiler().Profile(buildProfileTable(t))

	assert.Equal(t, 5, profile.TotalRecords)
	require.Len(t, profile.Columns, 3)

	assert.Equal(t, 1, profile.Columns[0].MissingCount)
	assert.InDelta(t, 0.2, profile.Columns[0].MissingRate, 1e-12)
	assert.Equal(t, 3, profile.Columns[1].MissingCount)
	assert.InDelta(t, 0.6, profile.Columns[1].MissingRate, 1e-12)
	assert.Equal(t, 0, profile.Columns[2].MissingCount)

	assert.Equal(t, []string{"a", "b"}, profile.ColumnsWithMissing())
}

func TestProfiler_PatternCoOccurrence(t *testing.T) {
	profile := NewProfiler().Profile(buildProfileTable(t))

	// Patterns: complete x2, {b} x2, {a,b} x1. Ordered by count desc then key.
	require.Len(t, profile.Patterns, 3)
	assert.Equal(t, "", profile.Patterns[0].Key())
	assert.Equal(t, 2, profile.Patterns[0].Count)
	assert.Equal(t, "b", profile.Patterns[1].Key())
	assert.Equal(t, 2, profile.Patterns[1].Count)
	assert.Equal(t, "a|b", profile.Patterns[2].Key())
	assert.Equal(t, 1, profile.Patterns[2].Count)

	require.Len(t, profile.RecordPatterns, 5)
	assert.Empty(t, profile.RecordPatterns[0])
	assert.Equal(t, []string{"b"}, profile.RecordPatterns[1])
	assert.Equal(t, []string{"a", "b"}, profile.RecordPatterns[3])
}

func TestProfiler_EmptyTable(t *testing.T) {
	tbl, err := table.New([]table.ColumnSpec{{Name: "a", Kind: table.KindRatio}})
	require.NoError(t, err)

	profile := NewProfiler().Profile(tbl)
	assert.Equal(t, 0, profile.TotalRecords)
	require.Len(t, profile.Columns, 1)
	assert.Equal(t, 0.0, profile.Columns[0].MissingRate)
}
