package ports

import "statcalc/domain/stats"

// Summarizer produces display-only order statistics for an observation sequence
type Summarizer interface {
	Summarize(data []float64) (stats.SummaryStats, error)
}
