package app

import (
	"context"
	"sync"

	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/domain/dataset"

	"github.com/stretchr/testify/mock"
)

type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	if ds := args.Get(0); ds != nil {
		return ds.(*dataset.Dataset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatasetRepository) List(ctx context.Context, limit, offset int) ([]dataset.Summary, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]dataset.Summary), args.Error(1)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryLedger records appended entries so tests can inspect them
type memoryLedger struct {
	mu      sync.Mutex
	records []calculation.Record
	failing error
}

func (l *memoryLedger) Append(ctx context.Context, rec *calculation.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failing != nil {
		return l.failing
	}
	l.records = append(l.records, *rec)
	return nil
}

func (l *memoryLedger) ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]calculation.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []calculation.Record
	for _, rec := range l.records {
		if rec.DatasetID == datasetID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (l *memoryLedger) ListRecent(ctx context.Context, limit int) ([]calculation.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]calculation.Record(nil), l.records...), nil
}

type staticSource struct {
	kind   dataset.SourceKind
	origin string
	values []float64
	err    error
}

func (s staticSource) Kind() dataset.SourceKind { return s.kind }
func (s staticSource) Origin() string           { return s.origin }
func (s staticSource) Load(ctx context.Context) ([]float64, error) {
	return s.values, s.err
}
