package stats

import (
	"errors"
	"fmt"
)

// Computation errors. Callers match them with errors.Is.
var (
	ErrEmptyObservations        = errors.New("observation sequence is empty")
	ErrInsufficientObservations = errors.New("at least two observations are required")
	ErrNegativeVariance         = errors.New("variance must be a non-negative number")
	ErrInvalidParameter         = errors.New("invalid parameter")
	ErrUnknownLevel             = errors.New("unknown confidence level")
)

func invalidParameter(name string, value float64, reason string) error {
	return fmt.Errorf("%w: %s=%g %s", ErrInvalidParameter, name, value, reason)
}
