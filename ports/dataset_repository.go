package ports

import (
	"context"

	"statcalc/domain/core"
	"statcalc/domain/dataset"
)

// DatasetRepository defines the interface for dataset storage operations
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	List(ctx context.Context, limit, offset int) ([]dataset.Summary, error)
	// Delete removes the dataset together with its calculation history
	Delete(ctx context.Context, id core.DatasetID) error
}
