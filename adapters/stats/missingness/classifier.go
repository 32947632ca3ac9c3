package missingness

import (
	"context"
	"math"
	"runtime"

	"gomiss/domain/core"
	"gomiss/domain/missing"
	"gomiss/domain/table"
	"gomiss/internal"

	"golang.org/x/sync/semaphore"
)

// Classifier decides the missingness mechanism for each target column:
// a global Little-style MCAR test over the whole table, then one
// univariate logistic regression of the target's missing indicator on each
// remaining covariate, then the decision rule over the collected p-values.
type Classifier struct {
	alpha       float64
	maxParallel int64
	log         *internal.Logger
}

// ClassifierOption configures a Classifier
type ClassifierOption func(*Classifier)

// WithAlpha sets the significance threshold (default 0.05)
func WithAlpha(alpha float64) ClassifierOption {
	return func(c *Classifier) { c.alpha = alpha }
}

// WithMaxParallel bounds concurrent covariate fits
func WithMaxParallel(n int64) ClassifierOption {
	return func(c *Classifier) { c.maxParallel = n }
}

// NewClassifier creates a mechanism classifier
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		alpha:       0.05,
		maxParallel: int64(runtime.NumCPU()),
		log:         internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns a verdict per target column. Target columns are always
// excluded from every covariate set - their own missingness is the variable
// under test, so one consistent rule applies regardless of which target is
// current. A degenerate target (no missing or all missing entries) is a
// caller error and fails the classification; a covariate whose fit fails is
// recorded as skipped with a NaN p-value and excluded from the decision.
func (c *Classifier) Classify(ctx context.Context, t *table.Table, targets []string) (map[string]missing.Verdict, error) {
	if len(targets) == 0 {
		return nil, core.NewInsufficientDataError("targets", "no target columns requested")
	}
	targetSet := make(map[string]bool, len(targets))
	for _, target := range targets {
		if _, ok := t.Spec(target); !ok {
			return nil, core.NewDataFormatError(target)
		}
		targetSet[target] = true
	}

	// The global test is a property of the whole table; run it once and
	// attach the same evidence to every verdict.
	global, err := LittleMCAR(t)
	if err != nil {
		return nil, err
	}
	c.log.Info("global MCAR test: stat=%.4f df=%d p=%.4g", global.Statistic, global.DF, global.PValue)

	verdicts := make(map[string]missing.Verdict, len(targets))
	for _, target := range targets {
		verdict, err := c.classifyTarget(ctx, t, target, targetSet, global)
		if err != nil {
			return nil, err
		}
		verdicts[target] = verdict
	}
	return verdicts, nil
}

func (c *Classifier) classifyTarget(ctx context.Context, t *table.Table, target string, targetSet map[string]bool, global GlobalTestResult) (missing.Verdict, error) {
	cells, err := t.Column(target)
	if err != nil {
		return missing.Verdict{}, err
	}

	indicator := make([]bool, len(cells))
	missingCount := 0
	for i, cell := range cells {
		if cell.IsMissing() {
			indicator[i] = true
			missingCount++
		}
	}
	if missingCount == 0 || missingCount == len(cells) {
		return missing.Verdict{}, core.NewInsufficientDataError(target, "missing indicator is constant")
	}

	// Covariates: every column that is not itself under test.
	var covariates []string
	for _, spec := range t.Columns() {
		if !targetSet[spec.Name] {
			covariates = append(covariates, spec.Name)
		}
	}

	results := make(chan covariateOutcome, len(covariates))
	sem := semaphore.NewWeighted(c.maxParallel)

	// Each fit touches one covariate column plus the shared read-only
	// indicator, so the fits are independent and order-free.
	for _, covariate := range covariates {
		if err := sem.Acquire(ctx, 1); err != nil {
			return missing.Verdict{}, err
		}
		go func(covariate string) {
			defer sem.Release(1)
			results <- c.fitCovariate(t, covariate, indicator)
		}(covariate)
	}

	verdict := missing.Verdict{
		Target:     target,
		Alpha:      c.alpha,
		GlobalP:    global.PValue,
		GlobalStat: global.Statistic,
		GlobalDF:   global.DF,
		CovariateP: make(map[string]float64, len(covariates)),
	}
	for range covariates {
		out := <-results
		verdict.CovariateP[out.covariate] = out.p
		if out.skip != "" {
			verdict.Skipped = append(verdict.Skipped, missing.SkippedCovariate{
				Column: out.covariate,
				Reason: out.skip,
			})
			c.log.Warn("target %s: covariate %s skipped: %s", target, out.covariate, out.skip)
		}
	}

	verdict.Mechanism = missing.Decide(verdict.GlobalP, verdict.CovariateP, c.alpha)
	return verdict, nil
}

// covariateOutcome is one covariate's contribution to the decision vector
type covariateOutcome struct {
	covariate string
	p         float64
	skip      string
}

// fitCovariate pairs the missing indicator with the covariate's observed
// values and fits the univariate logistic regression. Records where the
// covariate itself is missing cannot inform the fit and are dropped.
func (c *Classifier) fitCovariate(t *table.Table, covariate string, indicator []bool) covariateOutcome {
	out := covariateOutcome{covariate: covariate}
	out.p = math.NaN()

	values, err := t.FloatColumn(covariate)
	if err != nil {
		out.skip = err.Error()
		return out
	}

	var y []bool
	var x []float64
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		y = append(y, indicator[i])
		x = append(x, v)
	}

	fit, err := FitUnivariateLogit(y, x)
	if err != nil {
		// Recovered locally: the covariate is excluded from the decision
		// vector rather than aborting the whole classification.
		out.skip = err.Error()
		return out
	}
	out.p = fit.PValue
	return out
}
