package ports

import (
	"context"

	"statcalc/domain/dataset"
)

// ObservationSource loads a raw observation sequence from outside the process
type ObservationSource interface {
	Kind() dataset.SourceKind
	Origin() string
	Load(ctx context.Context) ([]float64, error)
}
