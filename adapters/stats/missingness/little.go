package missingness

import (
	"math"

	"gomiss/domain/core"
	"gomiss/domain/table"
	"gomiss/internal"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GlobalTestResult carries the Little-style MCAR test outcome for a table
type GlobalTestResult struct {
	Statistic       float64 `json:"statistic"`
	DF              int     `json:"df"`
	PValue          float64 `json:"p_value"`
	Patterns        int     `json:"patterns"`
	SkippedPatterns int     `json:"skipped_patterns"`
}

// LittleMCAR runs a likelihood-based test of the null hypothesis that the
// missingness pattern is independent of the observed values. Records are
// grouped by missingness pattern; each group's observed-variable means are
// compared against the complete-case estimates through the Mahalanobis
// distance, and the summed statistic is referred to a chi-squared
// distribution with sum(|O_j|) - p degrees of freedom.
//
// Mean and covariance are the complete-case ML estimates (population
// normalization) rather than EM iterates, which keeps the test closed-form.
// Categorical codes enter the numeric view as plain numbers.
func LittleMCAR(t *table.Table) (GlobalTestResult, error) {
	specs := t.Columns()
	p := len(specs)
	n := t.NumRows()
	if p == 0 || n == 0 {
		return GlobalTestResult{}, core.NewInsufficientDataError("table", "empty table")
	}

	// Numeric view with NaN for missing.
	data := make([][]float64, n)
	for r := 0; r < n; r++ {
		row := t.Row(r)
		vals := make([]float64, p)
		for c, cell := range row {
			vals[c] = cell.Float()
		}
		data[r] = vals
	}

	mu, sigma, complete, err := completeCaseMoments(data, p)
	if err != nil {
		return GlobalTestResult{}, err
	}
	internal.DefaultLogger.Debug("global MCAR test: %d complete cases over %d columns", complete, p)

	// Group records by missingness pattern.
	type group struct {
		observed []int
		rows     [][]float64
	}
	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, vals := range data {
		key := make([]byte, p)
		var observed []int
		for c, v := range vals {
			if math.IsNaN(v) {
				key[c] = '0'
			} else {
				key[c] = '1'
				observed = append(observed, c)
			}
		}
		k := string(key)
		g, ok := groups[k]
		if !ok {
			g = &group{observed: observed}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, vals)
	}

	statistic := 0.0
	df := 0
	used := 0
	skipped := 0
	for _, k := range order {
		g := groups[k]
		q := len(g.observed)
		if q == 0 {
			skipped++
			continue
		}

		// Group mean over observed variables.
		diff := make([]float64, q)
		for _, vals := range g.rows {
			for i, c := range g.observed {
				diff[i] += vals[c]
			}
		}
		nj := float64(len(g.rows))
		for i, c := range g.observed {
			diff[i] = diff[i]/nj - mu[c]
		}

		// Submatrix of the covariance restricted to the observed set.
		sub := mat.NewDense(q, q, nil)
		for i, a := range g.observed {
			for j, b := range g.observed {
				sub.Set(i, j, sigma[a][b])
			}
		}
		var inv mat.Dense
		if err := inv.Inverse(sub); err != nil {
			// Singular observed-covariance block: this pattern cannot
			// contribute; drop it from the statistic and the df.
			skipped++
			continue
		}

		d2 := 0.0
		for i := 0; i < q; i++ {
			for j := 0; j < q; j++ {
				d2 += diff[i] * inv.At(i, j) * diff[j]
			}
		}
		statistic += nj * d2
		df += q
		used++
	}

	df -= p
	if used < 2 || df <= 0 {
		return GlobalTestResult{}, core.NewInsufficientDataError("table", "not enough distinct missingness patterns for the global test")
	}

	chi := distuv.ChiSquared{K: float64(df)}
	pValue := 1 - chi.CDF(statistic)
	if pValue < 0 {
		pValue = 0
	}

	return GlobalTestResult{
		Statistic:       statistic,
		DF:              df,
		PValue:          pValue,
		Patterns:        used,
		SkippedPatterns: skipped,
	}, nil
}

// completeCaseMoments computes the ML mean vector and population covariance
// over records with every variable observed.
func completeCaseMoments(data [][]float64, p int) ([]float64, [][]float64, int, error) {
	var completeRows [][]float64
	for _, vals := range data {
		complete := true
		for _, v := range vals {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			completeRows = append(completeRows, vals)
		}
	}
	m := len(completeRows)
	if m <= p {
		return nil, nil, 0, core.NewInsufficientDataError("table", "fewer complete cases than columns")
	}

	mu := make([]float64, p)
	for _, vals := range completeRows {
		for c, v := range vals {
			mu[c] += v
		}
	}
	for c := range mu {
		mu[c] /= float64(m)
	}

	sigma := make([][]float64, p)
	for a := range sigma {
		sigma[a] = make([]float64, p)
	}
	for _, vals := range completeRows {
		for a := 0; a < p; a++ {
			da := vals[a] - mu[a]
			for b := 0; b < p; b++ {
				sigma[a][b] += da * (vals[b] - mu[b])
			}
		}
	}
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			sigma[a][b] /= float64(m)
		}
	}
	return mu, sigma, m, nil
}
