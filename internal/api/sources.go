package api

import (
	"context"

	"statcalc/adapters/excel"
	"statcalc/domain/dataset"
)

// inlineSource wraps observations posted as a JSON array
type inlineSource []float64

func (s inlineSource) Kind() dataset.SourceKind { return dataset.SourceText }
func (s inlineSource) Origin() string           { return "" }
func (s inlineSource) Load(ctx context.Context) ([]float64, error) {
	return []float64(s), nil
}

// uploadSource reports the uploaded file name instead of the staging path
type uploadSource struct {
	*excel.Source
	filename string
}

func (s uploadSource) Origin() string { return s.filename }
