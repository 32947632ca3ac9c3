package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"gomiss/domain/table"
)

// MissingMode selects how the generator knocks out target values
type MissingMode string

const (
	// MissingNone leaves the target fully observed.
	MissingNone MissingMode = "none"
	// MissingMCAR drops values uniformly at random.
	MissingMCAR MissingMode = "mcar"
	// MissingMAR drops values preferentially where the pupil count is
	// high, so the indicator is predictable from an observed covariate.
	MissingMAR MissingMode = "mar"
	// MissingMNAR drops values preferentially where the target value
	// itself is high, invisible to every observed covariate.
	MissingMNAR MissingMode = "mnar"
)

// Config controls the synthetic school-survey generator
type Config struct {
	Rows        int
	Seed        int64
	Mode        MissingMode
	MissingRate float64 // MCAR rate; base leak rate for MAR/MNAR
	HighRate    float64 // MAR/MNAR rate above the trigger threshold
}

// DefaultConfig returns a config suitable for most tests
func DefaultConfig() Config {
	return Config{
		Rows:        600,
		Seed:        42,
		Mode:        MissingMCAR,
		MissingRate: 0.2,
		HighRate:    0.9,
	}
}

// Dataset is one generated school survey
type Dataset struct {
	SchoolType []string  // raw categorical labels, mixed case on purpose
	NumPupils  []float64
	Attendance []float64
	PctFSM     []float64 // target values before knockout
	FSMMissing []bool
}

var schoolTypes = []string{"Primary", "secondary", "Special", "NURSERY"}

// Generate produces a deterministic synthetic survey for the given config
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows < 10 {
		return nil, fmt.Errorf("need at least 10 rows, got %d", cfg.Rows)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	ds := &Dataset{
		SchoolType: make([]string, cfg.Rows),
		NumPupils:  make([]float64, cfg.Rows),
		Attendance: make([]float64, cfg.Rows),
		PctFSM:     make([]float64, cfg.Rows),
		FSMMissing: make([]bool, cfg.Rows),
	}

	for i := 0; i < cfg.Rows; i++ {
		kind := rng.Intn(len(schoolTypes))
		ds.SchoolType[i] = schoolTypes[kind]

		// Pupil counts scale with the school kind plus noise.
		base := 150 + 400*float64(kind)
		ds.NumPupils[i] = math.Max(20, base+200*rng.NormFloat64())

		// FSM percentage: right-skewed-ish positive values.
		ds.PctFSM[i] = math.Max(0, 22+12*rng.NormFloat64())

		// Attendance dips slightly with FSM.
		ds.Attendance[i] = 96 - 0.08*ds.PctFSM[i] + 1.5*rng.NormFloat64()
	}

	pupilThreshold := quantile(ds.NumPupils, 0.7)
	fsmThreshold := quantile(ds.PctFSM, 0.7)

	for i := 0; i < cfg.Rows; i++ {
		switch cfg.Mode {
		case MissingMCAR:
			ds.FSMMissing[i] = rng.Float64() < cfg.MissingRate
		case MissingMAR:
			p := cfg.MissingRate / 4
			if ds.NumPupils[i] > pupilThreshold {
				p = cfg.HighRate
			}
			ds.FSMMissing[i] = rng.Float64() < p
		case MissingMNAR:
			p := cfg.MissingRate / 4
			if ds.PctFSM[i] > fsmThreshold {
				p = cfg.HighRate
			}
			ds.FSMMissing[i] = rng.Float64() < p
		}
	}
	return ds, nil
}

// Table builds the loaded-domain view of the dataset directly, with the
// school type already normalized and encoded.
func (ds *Dataset) Table() (*table.Table, error) {
	t, err := table.New([]table.ColumnSpec{
		{Name: "school_type", Kind: table.KindNominal},
		{Name: "num_pupils", Kind: table.KindRatio},
		{Name: "attendance_rate", Kind: table.KindRatio},
		{Name: "pct_fsm", Kind: table.KindRatio},
	})
	if err != nil {
		return nil, err
	}

	code := table.NewCategoryCode()
	for i := range ds.SchoolType {
		fsm := table.Numeric(ds.PctFSM[i])
		if ds.FSMMissing[i] {
			fsm = table.Missing()
		}
		row := []table.Cell{
			table.Category(code.Encode(normalize(ds.SchoolType[i]))),
			table.Numeric(ds.NumPupils[i]),
			table.Numeric(ds.Attendance[i]),
			fsm,
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	t.SetCode("school_type", code)
	return t, nil
}

// WriteCSV writes the raw survey as the loader would find it on disk:
// mixed-case category labels and "NA" for missing target values.
func (ds *Dataset) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"school_type", "num_pupils", "attendance_rate", "pct_fsm"}); err != nil {
		return err
	}
	for i := range ds.SchoolType {
		fsm := "NA"
		if !ds.FSMMissing[i] {
			fsm = strconv.FormatFloat(ds.PctFSM[i], 'f', 4, 64)
		}
		row := []string{
			ds.SchoolType[i],
			strconv.FormatFloat(ds.NumPupils[i], 'f', 0, 64),
			strconv.FormatFloat(ds.Attendance[i], 'f', 2, 64),
			fsm,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func normalize(s string) string {
	return strings.ToLower(s)
}

func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}
