package app

import (
	stderrors "errors"

	"statcalc/domain/core"
	"statcalc/domain/stats"
	"statcalc/internal/errors"
)

var inputErrors = []error{
	stats.ErrEmptyObservations,
	stats.ErrInsufficientObservations,
	stats.ErrNegativeVariance,
	stats.ErrInvalidParameter,
	stats.ErrUnknownLevel,
	core.ErrInvalidObservation,
	core.ErrNoObservations,
	core.ErrInvalidSource,
}

// classify turns a domain failure into an AppError whose code the surfaces map to a status.
// label names the operation that failed.
func classify(err error, label string) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return errors.Wrap(err, label)
	}
	if core.IsNotFoundError(err) {
		return errors.NotFound(label, err)
	}
	for _, target := range inputErrors {
		if stderrors.Is(err, target) {
			return errors.InvalidInputf(err, "%s failed", label)
		}
	}
	return errors.Wrapf(err, "%s failed", label)
}
