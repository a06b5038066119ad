package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"statcalc/domain/core"
)

// SourceKind records where an observation sequence was loaded from
type SourceKind string

const (
	SourceText   SourceKind = "text"
	SourceCSV    SourceKind = "csv"
	SourceXLSX   SourceKind = "xlsx"
	SourceRemote SourceKind = "remote"
)

// Dataset is an immutable, loaded observation sequence.
// Reloading produces a new Dataset rather than mutating an existing one.
type Dataset struct {
	ID           core.DatasetID `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Source       SourceKind     `json:"source" db:"source"`
	Origin       string         `json:"origin,omitempty" db:"origin"` // file path or URL
	Observations []float64      `json:"observations" db:"-"`
	Fingerprint  core.Hash      `json:"fingerprint" db:"fingerprint"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// New validates the observations and builds a Dataset that owns a private copy of them.
func New(name string, source SourceKind, origin string, observations []float64) (*Dataset, error) {
	if len(observations) == 0 {
		return nil, core.ErrNoObservations
	}
	for i, v := range observations {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewObservationError(i, fmt.Sprint(v), "value is not finite")
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s dataset (%d values)", source, len(observations))
	}

	obs := make([]float64, len(observations))
	copy(obs, observations)

	return &Dataset{
		ID:           core.NewDatasetID(),
		Name:         name,
		Source:       source,
		Origin:       origin,
		Observations: obs,
		Fingerprint:  core.HashObservations(obs),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Len returns the number of observations
func (d *Dataset) Len() int {
	return len(d.Observations)
}

// Values returns a copy of the observations so callers cannot mutate the dataset
func (d *Dataset) Values() []float64 {
	out := make([]float64, len(d.Observations))
	copy(out, d.Observations)
	return out
}

// Summary is the listing view of a dataset without its observations
type Summary struct {
	ID          core.DatasetID `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Source      SourceKind     `json:"source" db:"source"`
	Origin      string         `json:"origin,omitempty" db:"origin"`
	Count       int            `json:"count" db:"observation_count"`
	Fingerprint core.Hash      `json:"fingerprint" db:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// Summarize returns the listing view
func (d *Dataset) Summarize() Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		Source:      d.Source,
		Origin:      d.Origin,
		Count:       len(d.Observations),
		Fingerprint: d.Fingerprint,
		CreatedAt:   d.CreatedAt,
	}
}
