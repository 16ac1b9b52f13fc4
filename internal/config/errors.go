package config

import "errors"

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	ErrGridSize   = errors.New("config: n must be >= 3")
	ErrAlphaRange = errors.New("config: alpha_max must be > alpha_min")
	ErrEmptyMuSet = errors.New("config: mu_set parsed to empty set")
	ErrNegativeMu = errors.New("config: mu_set cannot contain negative values")
)

// ValidationError ties a failure to the option that caused it.
type ValidationError struct {
	Field   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Wrapped.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Wrapped}
}
