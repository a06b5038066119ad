package app

import (
	"context"

	"statcalc/domain/calculation"
	"statcalc/internal"
	"statcalc/internal/errors"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// BatchItem is the outcome of one request in a batch
type BatchItem struct {
	Index  int                 `json:"index"`
	Result *calculation.Result `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
	Code   string              `json:"code,omitempty"`
}

// BatchService evaluates independent requests concurrently
type BatchService struct {
	calculator *CalculatorService
	sem        *semaphore.Weighted
	limit      int
	logger     *internal.Logger
}

// NewBatchService creates a batch evaluator running at most concurrency requests at once
func NewBatchService(calculator *CalculatorService, concurrency int) *BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchService{
		calculator: calculator,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		limit:      concurrency,
		logger:     internal.DefaultLogger.With("BatchService"),
	}
}

// Evaluate runs every request and returns one item per request in input order.
// A failing request carries its own error and does not stop the others.
func (s *BatchService) Evaluate(ctx context.Context, reqs []calculation.Request) ([]BatchItem, error) {
	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)

	for i, req := range reqs {
		i, req := i, req
		if err := s.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer s.sem.Release(1)

			item := BatchItem{Index: i}
			result, err := s.calculator.Evaluate(gctx, req)
			if err != nil {
				item.Error = err.Error()
				item.Code = errors.GetCode(err)
			} else {
				item.Result = result
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "batch cancelled")
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	s.logger.Info("evaluated %d requests (%d failed, concurrency %d)", len(reqs), failed, s.limit)
	return items, nil
}
