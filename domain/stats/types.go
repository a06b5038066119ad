package stats

// Descriptive holds the summary of an observation sequence.
type Descriptive struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
}

// Interval is a two-sided interval estimate. MarginOfError is the half-width before any clamping.
type Interval struct {
	Lower         float64         `json:"lower"`
	Upper         float64         `json:"upper"`
	MarginOfError float64         `json:"margin_of_error"`
	Estimate      float64         `json:"estimate"`
	Critical      float64         `json:"critical_value"`
	Level         ConfidenceLevel `json:"level"`
}

// Contains reports whether v lies inside the closed interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// SummaryStats extends the descriptive triple with order statistics for display.
// It is informational and never feeds an interval or sample-size computation.
type SummaryStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}
