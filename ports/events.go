package ports

import "statcalc/domain/calculation"

// CalculationPublisher receives every finished calculation, successful or not.
// Publish must not block the caller.
type CalculationPublisher interface {
	Publish(rec calculation.Record)
}
