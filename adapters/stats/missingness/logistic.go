package missingness

import (
	"math"

	"gomiss/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Fixed iteration cap: the fit reports failure rather than loop
	// unboundedly.
	maxLogitIterations = 25

	// Convergence tolerance on the score vector.
	logitScoreTol = 1e-10

	// A standardized slope drifting past this bound means the likelihood
	// has no interior maximum: quasi-complete separation.
	separationBound = 12.0

	minLogitSample = 8
)

// LogitResult is a fitted univariate logistic regression with the Wald
// test evidence for the slope.
type LogitResult struct {
	Intercept  float64 `json:"intercept"`
	Slope      float64 `json:"slope"`
	SE         float64 `json:"se"`
	Z          float64 `json:"z"`
	PValue     float64 `json:"p_value"`
	Iterations int     `json:"iterations"`
	N          int     `json:"n"`
}

// FitUnivariateLogit fits P(y=1 | x) = logistic(b0 + b1*x) by
// Newton-Raphson and returns the Wald p-value for b1. The covariate is
// standardized internally for conditioning; estimates are mapped back to
// the original scale, which leaves the z statistic unchanged.
//
// Returns ErrInsufficientData for a degenerate indicator or constant
// covariate, ErrSeparation when the fit does not converge.
func FitUnivariateLogit(y []bool, x []float64) (LogitResult, error) {
	n := len(y)
	if n != len(x) {
		return LogitResult{}, core.NewInsufficientDataError("covariate", "indicator and covariate lengths differ")
	}
	if n < minLogitSample {
		return LogitResult{}, core.NewInsufficientDataError("covariate", "too few paired observations")
	}

	ones := 0
	for _, v := range y {
		if v {
			ones++
		}
	}
	if ones == 0 || ones == n {
		return LogitResult{}, core.NewInsufficientDataError("covariate", "indicator is constant")
	}

	// Standardize x.
	mx := 0.0
	for _, v := range x {
		mx += v
	}
	mx /= float64(n)
	sx := 0.0
	for _, v := range x {
		d := v - mx
		sx += d * d
	}
	sx = math.Sqrt(sx / float64(n))
	if sx == 0 {
		return LogitResult{}, core.NewInsufficientDataError("covariate", "constant covariate")
	}
	z := make([]float64, n)
	for i, v := range x {
		z[i] = (v - mx) / sx
	}

	// Newton-Raphson on (b0, b1) with the empirical log-odds as the
	// intercept start.
	pBar := float64(ones) / float64(n)
	b0 := math.Log(pBar / (1 - pBar))
	b1 := 0.0

	var h00, h01, h11, det float64
	converged := false
	iterations := 0
	for iter := 0; iter < maxLogitIterations; iter++ {
		iterations = iter + 1
		var g0, g1 float64
		h00, h01, h11 = 0, 0, 0
		for i := 0; i < n; i++ {
			eta := b0 + b1*z[i]
			mu := 1.0 / (1.0 + math.Exp(-eta))
			if mu < 1e-10 {
				mu = 1e-10
			} else if mu > 1-1e-10 {
				mu = 1 - 1e-10
			}
			yi := 0.0
			if y[i] {
				yi = 1.0
			}
			resid := yi - mu
			w := mu * (1 - mu)
			g0 += resid
			g1 += resid * z[i]
			h00 += w
			h01 += w * z[i]
			h11 += w * z[i] * z[i]
		}

		det = h00*h11 - h01*h01
		if det <= 1e-12 {
			return LogitResult{}, core.NewSeparationError("covariate")
		}

		db0 := (h11*g0 - h01*g1) / det
		db1 := (h00*g1 - h01*g0) / det
		b0 += db0
		b1 += db1

		if math.Abs(b1) > separationBound || math.IsNaN(b0) || math.IsNaN(b1) {
			return LogitResult{}, core.NewSeparationError("covariate")
		}
		if math.Max(math.Abs(g0), math.Abs(g1)) < logitScoreTol ||
			math.Max(math.Abs(db0), math.Abs(db1)) < 1e-12 {
			converged = true
			break
		}
	}
	if !converged {
		return LogitResult{}, core.NewSeparationError("covariate")
	}

	// Wald test from the inverse Fisher information; the standardized and
	// raw-scale z statistics coincide.
	seStd := math.Sqrt(h00 / det)
	zStat := b1 / seStd
	pValue := 2 * distuv.UnitNormal.Survival(math.Abs(zStat))
	if pValue > 1 {
		pValue = 1
	}

	return LogitResult{
		Intercept:  b0 - b1*mx/sx,
		Slope:      b1 / sx,
		SE:         seStd / sx,
		Z:          zStat,
		PValue:     pValue,
		Iterations: iterations,
		N:          n,
	}, nil
}
