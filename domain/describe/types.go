package describe

// Summary holds the descriptive statistics of one ratio column computed
// under one explicit missing-value policy. Immutable once created; it has
// no lifecycle beyond the analysis invocation that produced it.
type Summary struct {
	Column string `json:"column"`

	// N is the complete-case count used for every statistic below.
	// Removed is how many missing entries the policy discarded.
	N       int    `json:"n"`
	Removed int    `json:"removed"`
	Policy  string `json:"policy"`

	// Mean is the minimizer of the sum of squared deviations, computed in
	// closed form. Variance is the population variance (1/n) about Mean.
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`

	// Skewness is the third standardized moment g1 = m3 / m2^(3/2).
	// SkewnessCorrected carries the caller-selected small-sample branch.
	Skewness          float64 `json:"skewness"`
	SkewnessCorrected float64 `json:"skewness_corrected"`

	// Supplementary order statistics for the report.
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}
