package app

import (
	"context"
	stderrors "errors"
	"testing"

	"statcalc/adapters/stats/reference"
	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/domain/dataset"
	"statcalc/domain/stats"
	"statcalc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCalculatorService_InlineScenarios(t *testing.T) {
	calc := NewCalculatorService(nil, nil)
	ctx := context.Background()

	t.Run("describe", func(t *testing.T) {
		res, err := calc.Evaluate(ctx, calculation.Request{
			Kind:         calculation.KindDescribe,
			Observations: []float64{10, 20, 30, 40},
		})
		require.NoError(t, err)
		require.NotNil(t, res.Descriptive)
		assert.InDelta(t, 25.0, res.Descriptive.Mean, 1e-12)
		assert.InDelta(t, 166.6667, res.Descriptive.Variance, 1e-4)
		assert.Nil(t, res.Summary)
	})

	t.Run("mean interval", func(t *testing.T) {
		res, err := calc.Evaluate(ctx, calculation.Request{
			Kind:         calculation.KindMeanInterval,
			Observations: []float64{10, 20, 30, 40},
			Level:        stats.Level95,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Interval)
		assert.InDelta(t, 12.652, res.Interval.MarginOfError, 0.001)
		assert.Equal(t, stats.Level95, res.Level)
	})

	t.Run("proportion interval", func(t *testing.T) {
		res, err := calc.Evaluate(ctx, calculation.Request{
			Kind:       calculation.KindProportionInterval,
			Proportion: calculation.Float(0.5),
			N:          100,
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.098, res.Interval.MarginOfError, 0.001)
	})

	t.Run("sample size for mean", func(t *testing.T) {
		res, err := calc.Evaluate(ctx, calculation.Request{
			Kind:         calculation.KindSampleSizeMean,
			DesiredError: 2,
			Sigma:        10,
		})
		require.NoError(t, err)
		assert.Equal(t, 97, res.SampleSize)
	})

	t.Run("sample size for proportion", func(t *testing.T) {
		res, err := calc.Evaluate(ctx, calculation.Request{
			Kind:         calculation.KindSampleSizeProportion,
			DesiredError: 0.05,
			Proportion:   calculation.Float(0.5),
		})
		require.NoError(t, err)
		assert.Equal(t, 385, res.SampleSize)
	})
}

func TestCalculatorService_InvalidInput(t *testing.T) {
	calc := NewCalculatorService(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    calculation.Request
		target error
	}{
		{"single observation", calculation.Request{Kind: calculation.KindMeanInterval, Observations: []float64{5}}, stats.ErrInsufficientObservations},
		{"p out of range", calculation.Request{Kind: calculation.KindProportionInterval, Proportion: calculation.Float(1.2), N: 10}, stats.ErrInvalidParameter},
		{"zero n", calculation.Request{Kind: calculation.KindProportionInterval, Proportion: calculation.Float(0.2)}, stats.ErrInvalidParameter},
		{"zero desired error", calculation.Request{Kind: calculation.KindSampleSizeMean, Sigma: 3}, stats.ErrInvalidParameter},
		{"missing observations", calculation.Request{Kind: calculation.KindDescribe}, nil},
		{"unknown kind", calculation.Request{Kind: "median"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Evaluate(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestCalculatorService_LevelHandling(t *testing.T) {
	ctx := context.Background()
	req := calculation.Request{
		Kind:         calculation.KindMeanInterval,
		Observations: []float64{10, 20, 30, 40},
		Level:        "0.80",
	}

	lenient := NewCalculatorService(nil, nil)
	res, err := lenient.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, stats.Level95, res.Level)
	assert.InDelta(t, 12.652, res.Interval.MarginOfError, 0.001)

	strict := NewCalculatorService(nil, nil)
	strict.SetStrictLevels(true)
	_, err = strict.Evaluate(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, stats.ErrUnknownLevel)

	req.Level = "99%"
	res, err = strict.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, stats.Level99, res.Level)

	defaulted := NewCalculatorService(nil, nil)
	defaulted.SetDefaultLevel(stats.Level90)
	req.Level = "0.9"
	res, err = defaulted.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, stats.Level95, res.Level)

	req.Level = ""
	res, err = defaulted.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, stats.Level90, res.Level)
}

func TestCalculatorService_DatasetAndLedger(t *testing.T) {
	ctx := context.Background()
	ds, err := dataset.New("scores", dataset.SourceText, "", []float64{10, 20, 30, 40})
	require.NoError(t, err)

	repo := new(MockDatasetRepository)
	repo.On("GetByID", mock.Anything, ds.ID).Return(ds, nil)
	missing := core.NewDatasetID()
	repo.On("GetByID", mock.Anything, missing).Return(nil, core.NewNotFoundError("dataset", missing.String()))

	ledger := &memoryLedger{}
	calc := NewCalculatorService(repo, ledger)
	calc.SetSummarizer(reference.NewSummarizer())

	res, err := calc.Evaluate(ctx, calculation.Request{Kind: calculation.KindDescribe, DatasetID: ds.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 10.0, res.Summary.Min)
	assert.Equal(t, 40.0, res.Summary.Max)
	assert.Equal(t, ds.ID, res.DatasetID)

	_, err = calc.Evaluate(ctx, calculation.Request{Kind: calculation.KindMeanInterval, DatasetID: missing})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	require.Len(t, ledger.records, 2)
	assert.Equal(t, calculation.KindDescribe, ledger.records[0].Kind)
	assert.Empty(t, ledger.records[0].Error)
	assert.NotNil(t, ledger.records[0].Result)
	assert.NotEmpty(t, ledger.records[1].Error)
	assert.Nil(t, ledger.records[1].Result)

	repo.AssertExpectations(t)
}

func TestCalculatorService_LedgerFailureDoesNotFail(t *testing.T) {
	ledger := &memoryLedger{failing: stderrors.New("disk full")}
	calc := NewCalculatorService(nil, ledger)

	res, err := calc.Evaluate(context.Background(), calculation.Request{
		Kind:         calculation.KindSampleSizeMean,
		DesiredError: 2,
		Sigma:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, 97, res.SampleSize)
}

func TestCalculatorService_LenientLevelsUseExactKeys(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculatorService(nil, nil)

	tests := []struct {
		level    stats.ConfidenceLevel
		expected stats.ConfidenceLevel
		n        int
	}{
		{"0.90", stats.Level90, 68},
		{"0.99", stats.Level99, 166},
		{"0.9", stats.Level95, 97},
		{"90%", stats.Level95, 97},
		{"99", stats.Level95, 97},
		{"95%", stats.Level95, 97},
		{"0.80", stats.Level95, 97},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			res, err := calc.Evaluate(ctx, calculation.Request{
				Kind:         calculation.KindSampleSizeMean,
				DesiredError: 2,
				Sigma:        10,
				Level:        tt.level,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Level)
			assert.Equal(t, tt.n, res.SampleSize)
		})
	}
}
