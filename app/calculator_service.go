package app

import (
	"context"
	"fmt"
	"time"

	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/domain/stats"
	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/ports"
)

// CalculatorService dispatches calculation requests to the stats core and records them
type CalculatorService struct {
	datasets     ports.DatasetRepository
	ledger       ports.CalculationRepository
	summarizer   ports.Summarizer
	publisher    ports.CalculationPublisher
	defaultLevel stats.ConfidenceLevel
	strictLevels bool
	logger       *internal.Logger
}

// NewCalculatorService creates a calculator. Both repositories may be nil:
// without datasets only inline observations work, without a ledger nothing is recorded.
func NewCalculatorService(datasets ports.DatasetRepository, ledger ports.CalculationRepository) *CalculatorService {
	return &CalculatorService{
		datasets:     datasets,
		ledger:       ledger,
		defaultLevel: stats.DefaultLevel,
		logger:       internal.DefaultLogger.With("CalculatorService"),
	}
}

// SetDefaultLevel sets the level used when a request leaves it empty
func (s *CalculatorService) SetDefaultLevel(level stats.ConfidenceLevel) {
	s.defaultLevel = level
}

// SetStrictLevels rejects unknown level keys instead of falling back to 0.95
func (s *CalculatorService) SetStrictLevels(strict bool) {
	s.strictLevels = strict
}

// SetSummarizer adds order statistics to describe results
func (s *CalculatorService) SetSummarizer(summarizer ports.Summarizer) {
	s.summarizer = summarizer
}

// SetPublisher streams every finished calculation to the publisher
func (s *CalculatorService) SetPublisher(publisher ports.CalculationPublisher) {
	s.publisher = publisher
}

func (s *CalculatorService) SetLogger(logger *internal.Logger) {
	s.logger = logger.With("CalculatorService")
}

// Evaluate runs one calculation
func (s *CalculatorService) Evaluate(ctx context.Context, req calculation.Request) (*calculation.Result, error) {
	startTime := time.Now()

	result, err := s.evaluate(ctx, req)
	s.record(ctx, req, result, err, time.Since(startTime))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CalculatorService) evaluate(ctx context.Context, req calculation.Request) (*calculation.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.InvalidInputf(err, "invalid %s request", req.Kind)
	}

	level, err := s.resolveLevel(req.Level)
	if err != nil {
		return nil, errors.InvalidInputf(err, "%s failed", req.Kind.Label())
	}

	result := &calculation.Result{
		Kind:      req.Kind,
		DatasetID: req.DatasetID,
	}

	var data []float64
	if req.Kind.NeedsObservations() {
		data, err = s.observations(ctx, req)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
	}

	switch req.Kind {
	case calculation.KindDescribe:
		d, err := stats.Describe(data)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
		result.Descriptive = &d
		if s.summarizer != nil {
			summary, err := s.summarizer.Summarize(data)
			if err != nil {
				s.logger.Warn("summary skipped: %v", err)
			} else {
				result.Summary = &summary
			}
		}
		return result, nil

	case calculation.KindMeanInterval, calculation.KindMeanIntervalT:
		estimate := stats.MeanInterval
		if req.Kind == calculation.KindMeanIntervalT {
			estimate = stats.MeanIntervalT
		}
		iv, err := estimate(data, level)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
		result.Level = level
		result.Interval = &iv
		return result, nil

	case calculation.KindProportionInterval:
		iv, err := stats.ProportionInterval(req.P(), req.N, level)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
		result.Level = level
		result.Interval = &iv
		return result, nil

	case calculation.KindSampleSizeMean:
		n, err := stats.SampleSizeForMean(req.DesiredError, req.Sigma, level)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
		result.Level = level
		result.SampleSize = n
		return result, nil

	case calculation.KindSampleSizeProportion:
		n, err := stats.SampleSizeForProportion(req.DesiredError, req.P(), level)
		if err != nil {
			return nil, classify(err, req.Kind.Label())
		}
		result.Level = level
		result.SampleSize = n
		return result, nil
	}

	return nil, errors.InvalidInput(fmt.Sprintf("unknown calculation kind %q", req.Kind))
}

// resolveLevel applies the default for an empty key. In lenient mode only the exact table keys
// are honoured and anything else becomes 0.95; strict mode also accepts "95%" style spellings
// and rejects the rest.
func (s *CalculatorService) resolveLevel(raw stats.ConfidenceLevel) (stats.ConfidenceLevel, error) {
	if raw == "" {
		return s.defaultLevel, nil
	}
	if s.strictLevels {
		return stats.ParseLevel(string(raw))
	}
	if !raw.Valid() {
		s.logger.Debug("unknown level %q, using %s", raw, stats.DefaultLevel)
	}
	return stats.NormalizeLevel(raw), nil
}

func (s *CalculatorService) observations(ctx context.Context, req calculation.Request) ([]float64, error) {
	if req.DatasetID.IsEmpty() {
		return req.Observations, nil
	}
	if s.datasets == nil {
		return nil, errors.InvalidInput("dataset_id given but no dataset store is configured")
	}
	ds, err := s.datasets.GetByID(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}
	return ds.Observations, nil
}

// Recent returns the newest ledger entries across all datasets
func (s *CalculatorService) Recent(ctx context.Context, limit int) ([]calculation.Record, error) {
	if s.ledger == nil {
		return []calculation.Record{}, nil
	}
	recs, err := s.ledger.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list calculations", err)
	}
	return recs, nil
}

// record appends to the ledger and notifies the publisher.
// A ledger failure never fails the calculation.
func (s *CalculatorService) record(ctx context.Context, req calculation.Request, result *calculation.Result, calcErr error, elapsed time.Duration) {
	if s.ledger == nil && s.publisher == nil {
		return
	}

	rec := &calculation.Record{
		ID:        core.NewCalculationID(),
		DatasetID: req.DatasetID,
		Kind:      req.Kind,
		Request:   req,
		Result:    result,
		Duration:  elapsed,
		CreatedAt: time.Now().UTC(),
	}
	if calcErr != nil {
		rec.Error = calcErr.Error()
	}
	// inline observations are not stored twice
	if !req.DatasetID.IsEmpty() {
		rec.Request.Observations = nil
	}

	if s.ledger != nil {
		if err := s.ledger.Append(ctx, rec); err != nil {
			s.logger.Error("failed to record %s calculation: %v", req.Kind, err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(*rec)
	}
}
