package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDatasetNotFound     = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrCalculationNotFound = fmt.Errorf("%w: calculation", ErrNotFound)

	ErrInvalidObservation = errors.New("invalid observation")
	ErrNoObservations     = errors.New("no valid observations")
	ErrInvalidSource      = errors.New("invalid observation source")
)

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewObservationError(index int, raw string, reason string) error {
	return fmt.Errorf("%w at position %d (%q): %s", ErrInvalidObservation, index+1, raw, reason)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
