package missingness

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomiss/domain/core"
	"gomiss/domain/missing"
	"gomiss/domain/table"
	"gomiss/internal/testkit"
)

// mcarFixture builds a table whose incomplete group is mean-balanced
// against the complete cases, so the global test cannot reject.
func mcarFixture(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.ColumnSpec{
		{Name: "x", Kind: table.KindRatio},
		{Name: "y", Kind: table.KindRatio},
	})
	require.NoError(t, err)

	complete := [][2]float64{
		{1, 1}, {3, 1}, {1, 3}, {3, 3}, {1, 1}, {3, 3}, {1, 3}, {3, 1},
	}
	for _, row := range complete {
		require.NoError(t, tbl.Append([]table.Cell{table.Numeric(row[0]), table.Numeric(row[1])}))
	}
	for _, x := range []float64{1, 1, 3, 3} {
		require.NoError(t, tbl.Append([]table.Cell{table.Numeric(x), table.Missing()}))
	}
	return tbl
}

func TestClassifier_MCARVerdict(t *testing.T) {
	verdicts, err := NewClassifier().Classify(context.Background(), mcarFixture(t), []string{"y"})
	require.NoError(t, err)

	verdict, ok := verdicts["y"]
	require.True(t, ok)

	assert.Equal(t, missing.MechanismMCAR, verdict.Mechanism)
	assert.GreaterOrEqual(t, verdict.GlobalP, 0.99)
	assert.Equal(t, 0.05, verdict.Alpha)

	// The target never appears in its own covariate set.
	_, hasTarget := verdict.CovariateP["y"]
	assert.False(t, hasTarget)
	_, hasX := verdict.CovariateP["x"]
	assert.True(t, hasX)
}

func TestClassifier_MARGoldStandard(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.Mode = testkit.MissingMAR
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)
	tbl, err := ds.Table()
	require.NoError(t, err)

	verdicts, err := NewClassifier().Classify(context.Background(), tbl, []string{"pct_fsm"})
	require.NoError(t, err)

	verdict := verdicts["pct_fsm"]
	assert.Equal(t, missing.MechanismMAR, verdict.Mechanism,
		"missingness driven by pupil counts must be classified as MAR")
	assert.Less(t, verdict.GlobalP, 0.05)
	assert.Less(t, verdict.CovariateP["num_pupils"], 0.05)
	assert.Empty(t, verdict.Skipped)
}

func TestClassifier_SeparatedCovariateIsSkipped(t *testing.T) {
	// The target is missing exactly when s is positive, which makes the
	// logistic fit on s perfectly separated. The covariate must be
	// excluded with a NaN p-value rather than failing the classification.
	tbl, err := table.New([]table.ColumnSpec{
		{Name: "s", Kind: table.KindRatio},
		{Name: "w", Kind: table.KindRatio},
		{Name: "y", Kind: table.KindRatio},
	})
	require.NoError(t, err)

	n := 24
	for i := 0; i < n; i++ {
		s := float64(i) - 11.5
		w := float64((i*7)%5) + 0.3*float64(i%3)
		y := table.Numeric(10 + float64(i%4))
		if s > 0 {
			y = table.Missing()
		}
		require.NoError(t, tbl.Append([]table.Cell{table.Numeric(s), table.Numeric(w), y}))
	}

	verdicts, err := NewClassifier().Classify(context.Background(), tbl, []string{"y"})
	require.NoError(t, err)

	verdict := verdicts["y"]
	require.Contains(t, verdict.CovariateP, "s")
	assert.True(t, math.IsNaN(verdict.CovariateP["s"]), "separated fit must record NaN")

	var skippedNames []string
	for _, s := range verdict.Skipped {
		skippedNames = append(skippedNames, s.Column)
	}
	assert.Contains(t, skippedNames, "s")

	// The well-behaved covariate still contributes a real p-value.
	require.Contains(t, verdict.CovariateP, "w")
	assert.False(t, math.IsNaN(verdict.CovariateP["w"]))
}

func TestClassifier_MultipleTargetsShareExclusion(t *testing.T) {
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)
	tbl, err := ds.Table()
	require.NoError(t, err)

	// attendance_rate has no missing values, so asking for it as a target
	// must fail; but the exclusion rule is what we exercise here with a
	// single degenerate check.
	_, err = NewClassifier().Classify(context.Background(), tbl, []string{"pct_fsm", "attendance_rate"})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestClassifier_UnknownTarget(t *testing.T) {
	tbl := mcarFixture(t)
	_, err := NewClassifier().Classify(context.Background(), tbl, []string{"ghost"})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestClassifier_NoTargets(t *testing.T) {
	tbl := mcarFixture(t)
	_, err := NewClassifier().Classify(context.Background(), tbl, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestClassifier_AlphaOption(t *testing.T) {
	c := NewClassifier(WithAlpha(0.01), WithMaxParallel(2))
	verdicts, err := c.Classify(context.Background(), mcarFixture(t), []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, 0.01, verdicts["y"].Alpha)
}
