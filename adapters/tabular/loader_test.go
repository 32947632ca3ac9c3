package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gomiss/domain/core"
	"gomiss/domain/table"
	"gomiss/ports"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const surveyCSV = `school_type,num_pupils,pct_fsm,notes
Primary,210,18.5,ok
SECONDARY,950,NA,ok
primary,180,22.0,
Special,95,31.4,check
 secondary ,1100,12.9,ok
Nursery,45,bad-number,ok
`

func surveyColumns() []table.ColumnSpec {
	return []table.ColumnSpec{
		{Name: "school_type", Kind: table.KindNominal},
		{Name: "num_pupils", Kind: table.KindRatio},
		{Name: "pct_fsm", Kind: table.KindRatio},
	}
}

func TestLoader_ProjectionAndEncoding(t *testing.T) {
	path := writeCSV(t, surveyCSV)

	tbl, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:              path,
		Columns:           surveyColumns(),
		CategoricalColumn: "school_type",
		MissingMarkers:    []string{"NA"},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, tbl.NumRows())
	assert.Equal(t, 3, tbl.NumCols())

	// Distinct normalized labels in first-seen order: primary, secondary,
	// special, nursery.
	assert.Equal(t, []string{"school_type"}, tbl.EncodedColumns())
	code, ok := tbl.Code("school_type")
	require.True(t, ok)
	assert.Equal(t, []string{"primary", "secondary", "special", "nursery"}, code.Labels())

	got, ok := code.Lookup("secondary")
	require.True(t, ok)
	assert.Equal(t, 1, got, "mixed-case variants collapse to one code")

	cells, err := tbl.Column("school_type")
	require.NoError(t, err)
	assert.Equal(t, table.Category(0), cells[0])
	assert.Equal(t, table.Category(1), cells[1])
	assert.Equal(t, table.Category(1), cells[4], "padded label normalizes to the same code")
}

func TestLoader_MissingMarkersAndUnparseable(t *testing.T) {
	path := writeCSV(t, surveyCSV)

	tbl, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:              path,
		Columns:           surveyColumns(),
		CategoricalColumn: "school_type",
		MissingMarkers:    []string{"NA"},
	})
	require.NoError(t, err)

	fsm, err := tbl.Column("pct_fsm")
	require.NoError(t, err)
	assert.True(t, fsm[1].IsMissing(), "NA marker becomes missing")
	assert.True(t, fsm[5].IsMissing(), "unparseable numeric becomes missing")
	assert.Equal(t, table.Numeric(18.5), fsm[0])
}

func TestLoader_RowFilters(t *testing.T) {
	path := writeCSV(t, surveyCSV)

	tbl, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:              path,
		Columns:           surveyColumns(),
		CategoricalColumn: "school_type",
		MissingMarkers:    []string{"NA"},
		ExcludedRows:      []int{0, 5},
		RequireNonEmpty:   []string{"notes"},
	})
	require.NoError(t, err)

	// Six data rows minus two fixed ordinals minus the empty-notes row.
	assert.Equal(t, 3, tbl.NumRows())

	// Encoding runs over kept rows only, so "primary" never gets a code.
	code, ok := tbl.Code("school_type")
	require.True(t, ok)
	assert.Equal(t, []string{"secondary", "special"}, code.Labels())
}

func TestLoader_UnknownColumnFails(t *testing.T) {
	path := writeCSV(t, surveyCSV)

	_, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:    path,
		Columns: []table.ColumnSpec{{Name: "ghost", Kind: table.KindRatio}},
	})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestLoader_CategoricalMustBeProjected(t *testing.T) {
	path := writeCSV(t, surveyCSV)

	_, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:              path,
		Columns:           []table.ColumnSpec{{Name: "num_pupils", Kind: table.KindRatio}},
		CategoricalColumn: "school_type",
	})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path:    filepath.Join(t.TempDir(), "absent.csv"),
		Columns: surveyColumns(),
	})
	assert.Error(t, err)
}

func TestLoader_ReadsExcelWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"school_type", "num_pupils"},
		{"Primary", 210},
		{"Secondary", 950},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := NewLoader().Load(context.Background(), ports.LoadRequest{
		Path: path,
		Columns: []table.ColumnSpec{
			{Name: "school_type", Kind: table.KindNominal},
			{Name: "num_pupils", Kind: table.KindRatio},
		},
		CategoricalColumn: "school_type",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	code, ok := tbl.Code("school_type")
	require.True(t, ok)
	assert.Equal(t, []string{"primary", "secondary"}, code.Labels())
}

func TestFileReader_RequiresDataRow(t *testing.T) {
	path := writeCSV(t, "only_header\n")
	_, err := NewFileReader(path).Read()
	assert.Error(t, err)
}
