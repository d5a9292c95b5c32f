package core

import (
	"errors"
)

// Domain errors - one sentinel per failure class of an impact analysis
var (
	// Input validation errors
	ErrEmptyInput         = errors.New("empty input")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrConversionFailure  = errors.New("data conversion failure")
	ErrDegenerateResponse = errors.New("degenerate response")
	ErrPeriodSemantic     = errors.New("invalid period")

	// Model errors
	ErrModelContract = errors.New("model contract violation")
	ErrFitting       = errors.New("model fitting failed")
)

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrConversionFailure) ||
		errors.Is(err, ErrDegenerateResponse) ||
		errors.Is(err, ErrPeriodSemantic) ||
		errors.Is(err, ErrModelContract)
}

func IsFittingError(err error) bool {
	return errors.Is(err, ErrFitting)
}
