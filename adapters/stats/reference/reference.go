// Package reference computes exact distribution quantiles and order statistics with
// third-party numeric libraries. It audits the calculator's lookup tables and adds
// display-only summaries; interval and sample-size results never depend on it.
package reference

import (
	"math"
	"sort"

	"statcalc/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ExactZ returns the two-sided standard normal quantile for the level
func ExactZ(level stats.ConfidenceLevel) float64 {
	return distuv.UnitNormal.Quantile(upperTail(level))
}

// ExactT returns the two-sided Student's t quantile for the level and degrees of freedom
func ExactT(level stats.ConfidenceLevel, df int) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile(upperTail(level))
}

func upperTail(level stats.ConfidenceLevel) float64 {
	return 1 - (1-level.Float())/2
}

// Deviation compares one tabulated critical value with its exact counterpart
type Deviation struct {
	Kind      string                `json:"kind"` // "z" or "t"
	Level     stats.ConfidenceLevel `json:"level"`
	DF        int                   `json:"df,omitempty"`
	Tabulated float64               `json:"tabulated"`
	Exact     float64               `json:"exact"`
	AbsDiff   float64               `json:"abs_diff"`
}

// VerifyTables checks every z and t table entry against the exact quantile
func VerifyTables() []Deviation {
	var out []Deviation
	for _, level := range stats.Levels() {
		z := stats.ZValue(level)
		exact := ExactZ(level)
		out = append(out, Deviation{Kind: "z", Level: level, Tabulated: z, Exact: exact, AbsDiff: math.Abs(z - exact)})
	}
	for _, level := range stats.Levels() {
		for _, df := range stats.DFBuckets() {
			tv := stats.TValue(level, df)
			exact := ExactT(level, df)
			out = append(out, Deviation{Kind: "t", Level: level, DF: df, Tabulated: tv, Exact: exact, AbsDiff: math.Abs(tv - exact)})
		}
	}
	return out
}

// Worst returns the entry with the largest absolute difference
func Worst(devs []Deviation) (Deviation, bool) {
	if len(devs) == 0 {
		return Deviation{}, false
	}
	sorted := append([]Deviation(nil), devs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AbsDiff > sorted[j].AbsDiff })
	return sorted[0], true
}

// Summarizer computes order statistics for display
type Summarizer struct{}

// NewSummarizer creates a new summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns min, max, median and quartiles of the observations
func (s *Summarizer) Summarize(data []float64) (stats.SummaryStats, error) {
	if len(data) == 0 {
		return stats.SummaryStats{}, stats.ErrEmptyObservations
	}
	min, err := mstats.Min(data)
	if err != nil {
		return stats.SummaryStats{}, err
	}
	max, err := mstats.Max(data)
	if err != nil {
		return stats.SummaryStats{}, err
	}
	median, err := mstats.Median(data)
	if err != nil {
		return stats.SummaryStats{}, err
	}
	q25, err := mstats.Percentile(data, 25)
	if err != nil {
		return stats.SummaryStats{}, err
	}
	q75, err := mstats.Percentile(data, 75)
	if err != nil {
		return stats.SummaryStats{}, err
	}
	return stats.SummaryStats{
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}, nil
}
