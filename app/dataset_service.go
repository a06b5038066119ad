package app

import (
	"context"

	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/domain/dataset"
	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/ports"
)

// DatasetService loads observation sequences once and stores them for later calculations
type DatasetService struct {
	datasets ports.DatasetRepository
	ledger   ports.CalculationRepository
	logger   *internal.Logger
}

// NewDatasetService creates a dataset service
func NewDatasetService(datasets ports.DatasetRepository, ledger ports.CalculationRepository) *DatasetService {
	return &DatasetService{
		datasets: datasets,
		ledger:   ledger,
		logger:   internal.DefaultLogger.With("DatasetService"),
	}
}

// Import loads the source and persists the result as a new dataset
func (s *DatasetService) Import(ctx context.Context, name string, source ports.ObservationSource) (*dataset.Dataset, error) {
	values, err := source.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "dataset import cancelled")
		}
		return nil, classifySource(err, source)
	}

	ds, err := dataset.New(name, source.Kind(), source.Origin(), values)
	if err != nil {
		return nil, classify(err, "dataset import")
	}

	if err := s.datasets.Create(ctx, ds); err != nil {
		return nil, errors.DatabaseError("failed to store dataset", err)
	}

	s.logger.Info("imported dataset %s (%s, %d values, fingerprint %s)", ds.ID, ds.Source, ds.Len(), ds.Fingerprint.Short())
	return ds, nil
}

func classifySource(err error, source ports.ObservationSource) error {
	if source.Kind() == dataset.SourceRemote && !errors.IsAppError(err) {
		if classified := classify(err, "remote load"); errors.GetCode(classified) == errors.CodeInvalidInput {
			return classified
		}
		return errors.ExternalServiceError(source.Origin(), err)
	}
	return classify(err, "loading "+string(source.Kind())+" observations")
}

// Get returns a stored dataset
func (s *DatasetService) Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "dataset lookup")
	}
	return ds, nil
}

// List returns dataset summaries, newest first
func (s *DatasetService) List(ctx context.Context, limit, offset int) ([]dataset.Summary, error) {
	list, err := s.datasets.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.DatabaseError("failed to list datasets", err)
	}
	return list, nil
}

// Delete removes a dataset and its calculation history
func (s *DatasetService) Delete(ctx context.Context, id core.DatasetID) error {
	if err := s.datasets.Delete(ctx, id); err != nil {
		return classify(err, "dataset delete")
	}
	s.logger.Info("deleted dataset %s", id)
	return nil
}

// Calculations returns the recent ledger entries for a dataset
func (s *DatasetService) Calculations(ctx context.Context, id core.DatasetID, limit int) ([]calculation.Record, error) {
	if _, err := s.datasets.GetByID(ctx, id); err != nil {
		return nil, classify(err, "dataset lookup")
	}
	if s.ledger == nil {
		return []calculation.Record{}, nil
	}
	recs, err := s.ledger.ListByDataset(ctx, id, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list calculations", err)
	}
	return recs, nil
}
