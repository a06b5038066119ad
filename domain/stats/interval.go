package stats

import (
	"math"
)

// MeanInterval builds a z-based confidence interval for the population mean.
// Bounds are not clamped.
func MeanInterval(data []float64, level ConfidenceLevel) (Interval, error) {
	d, err := Describe(data)
	if err != nil {
		return Interval{}, err
	}
	return meanInterval(d, NormalizeLevel(level), ZValue(level)), nil
}

// MeanIntervalT is MeanInterval with the tabulated t value for n-1 degrees of freedom
// in place of z.
func MeanIntervalT(data []float64, level ConfidenceLevel) (Interval, error) {
	d, err := Describe(data)
	if err != nil {
		return Interval{}, err
	}
	return meanInterval(d, NormalizeLevel(level), TValue(level, d.N-1)), nil
}

func meanInterval(d Descriptive, level ConfidenceLevel, critical float64) Interval {
	moe := critical * d.StdDev / math.Sqrt(float64(d.N))
	return Interval{
		Lower:         d.Mean - moe,
		Upper:         d.Mean + moe,
		MarginOfError: moe,
		Estimate:      d.Mean,
		Critical:      critical,
		Level:         level,
	}
}

// ProportionInterval builds a Wald interval for a population proportion p observed over n trials.
// Bounds are clamped to [0, 1], so the interval may be asymmetric around p.
func ProportionInterval(p float64, n int, level ConfidenceLevel) (Interval, error) {
	if err := checkProportion("p", p); err != nil {
		return Interval{}, err
	}
	if n < 1 {
		return Interval{}, invalidParameter("n", float64(n), "must be at least 1")
	}

	z := ZValue(level)
	moe := z * math.Sqrt(p*(1-p)/float64(n))
	return Interval{
		Lower:         math.Max(0, p-moe),
		Upper:         math.Min(1, p+moe),
		MarginOfError: moe,
		Estimate:      p,
		Critical:      z,
		Level:         NormalizeLevel(level),
	}, nil
}

func checkProportion(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return invalidParameter(name, p, "must lie in [0, 1]")
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalidParameter(name, v, "must be a positive finite number")
	}
	return nil
}
