package ports

import (
	"context"

	"statcalc/domain/calculation"
	"statcalc/domain/core"
)

// CalculationRepository is the append-only ledger of finished computations
type CalculationRepository interface {
	Append(ctx context.Context, rec *calculation.Record) error
	ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]calculation.Record, error)
	ListRecent(ctx context.Context, limit int) ([]calculation.Record, error)
}
