package calculation

import (
	"fmt"
	"time"

	"statcalc/domain/core"
	"statcalc/domain/stats"
)

// Kind selects which computation a Request runs
type Kind string

const (
	KindDescribe             Kind = "describe"
	KindMeanInterval         Kind = "mean_interval"
	KindMeanIntervalT        Kind = "mean_interval_t"
	KindProportionInterval   Kind = "proportion_interval"
	KindSampleSizeMean       Kind = "sample_size_mean"
	KindSampleSizeProportion Kind = "sample_size_proportion"
)

// Kinds lists every supported computation
func Kinds() []Kind {
	return []Kind{
		KindDescribe,
		KindMeanInterval,
		KindMeanIntervalT,
		KindProportionInterval,
		KindSampleSizeMean,
		KindSampleSizeProportion,
	}
}

// Valid reports whether k names a supported computation
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// NeedsObservations reports whether the computation consumes an observation sequence
func (k Kind) NeedsObservations() bool {
	return k == KindDescribe || k == KindMeanInterval || k == KindMeanIntervalT
}

// Label is the human-readable name used in reports and error messages
func (k Kind) Label() string {
	switch k {
	case KindDescribe:
		return "descriptive statistics"
	case KindMeanInterval:
		return "confidence interval for the mean"
	case KindMeanIntervalT:
		return "confidence interval for the mean (t)"
	case KindProportionInterval:
		return "confidence interval for a proportion"
	case KindSampleSizeMean:
		return "sample size for a mean"
	case KindSampleSizeProportion:
		return "sample size for a proportion"
	}
	return string(k)
}

// Request carries already-parsed inputs for a single computation.
// Observations are given inline or by DatasetID, never read from shared state.
type Request struct {
	Kind         Kind                  `json:"kind"`
	DatasetID    core.DatasetID        `json:"dataset_id,omitempty"`
	Observations []float64             `json:"observations,omitempty"`
	Level        stats.ConfidenceLevel `json:"level,omitempty"`
	Proportion   *float64              `json:"p,omitempty"`
	N            int                   `json:"n,omitempty"`
	DesiredError float64               `json:"desired_error,omitempty"`
	Sigma        float64               `json:"sigma,omitempty"`
}

// Validate checks that the fields the kind needs are present.
// Range checks belong to the computation itself.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown calculation kind %q", r.Kind)
	}
	if r.Kind.NeedsObservations() {
		if r.DatasetID.IsEmpty() && len(r.Observations) == 0 {
			return fmt.Errorf("%s requires observations or a dataset_id", r.Kind.Label())
		}
		if !r.DatasetID.IsEmpty() && len(r.Observations) > 0 {
			return fmt.Errorf("%s takes observations or a dataset_id, not both", r.Kind.Label())
		}
	}

	switch r.Kind {
	case KindProportionInterval:
		if r.Proportion == nil {
			return fmt.Errorf("%s requires p", r.Kind.Label())
		}
	case KindSampleSizeProportion:
		if r.Proportion == nil {
			return fmt.Errorf("%s requires p", r.Kind.Label())
		}
	}
	return nil
}

// P returns the requested proportion, or 0 when absent
func (r Request) P() float64 {
	if r.Proportion == nil {
		return 0
	}
	return *r.Proportion
}

// Result is the outcome of one computation; exactly one payload field is set
type Result struct {
	Kind        Kind                  `json:"kind"`
	Level       stats.ConfidenceLevel `json:"level,omitempty"`
	DatasetID   core.DatasetID        `json:"dataset_id,omitempty"`
	Descriptive *stats.Descriptive    `json:"descriptive,omitempty"`
	Summary     *stats.SummaryStats   `json:"summary,omitempty"`
	Interval    *stats.Interval       `json:"interval,omitempty"`
	SampleSize  int                   `json:"sample_size,omitempty"`
}

// Record is a ledger entry for a finished computation
type Record struct {
	ID        core.CalculationID `json:"id"`
	DatasetID core.DatasetID     `json:"dataset_id,omitempty"`
	Kind      Kind               `json:"kind"`
	Request   Request            `json:"request"`
	Result    *Result            `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Duration  time.Duration      `json:"duration"`
	CreatedAt time.Time          `json:"created_at"`
}

// Float is a helper for building requests with an optional proportion
func Float(v float64) *float64 {
	return &v
}
