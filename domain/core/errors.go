package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Loader errors
	ErrDataFormat = errors.New("malformed or missing expected column")
	ErrEncoding   = errors.New("categorical code collision")

	// Statistical test errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrSeparation       = errors.New("logistic fit did not converge")

	// Descriptive statistics errors
	ErrDegenerateSample = errors.New("degenerate sample")
)

// Error constructors with context
func NewDataFormatError(column string) error {
	return fmt.Errorf("%w: %s", ErrDataFormat, column)
}

func NewEncodingError(column string, reason string) error {
	return fmt.Errorf("%w in column %s: %s", ErrEncoding, column, reason)
}

func NewInsufficientDataError(column string, reason string) error {
	return fmt.Errorf("%w: column %s: %s", ErrInsufficientData, column, reason)
}

func NewSeparationError(covariate string) error {
	return fmt.Errorf("%w: quasi-complete separation on covariate %s", ErrSeparation, covariate)
}

func NewDegenerateSampleError(column string, reason string) error {
	return fmt.Errorf("%w: column %s: %s", ErrDegenerateSample, column, reason)
}

// Error checking helpers
func IsLoaderError(err error) bool {
	return errors.Is(err, ErrDataFormat) || errors.Is(err, ErrEncoding)
}

func IsRecoverableFitError(err error) bool {
	return errors.Is(err, ErrSeparation) || errors.Is(err, ErrInsufficientData)
}
