package stats

import (
	"math"
)

// Mean returns the arithmetic mean of the observations.
func Mean(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyObservations
	}
	sum := 0.0
	for _, x := range data {
		sum += x
	}
	return sum / float64(len(data)), nil
}

// SampleVariance returns the Bessel-corrected variance of data around mean.
// mean is expected to come from Mean(data).
func SampleVariance(data []float64, mean float64) (float64, error) {
	if len(data) < 2 {
		return 0, ErrInsufficientObservations
	}
	ss := 0.0
	for _, x := range data {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(data)-1), nil
}

// StdDev returns the square root of a variance.
func StdDev(variance float64) (float64, error) {
	if math.IsNaN(variance) || variance < 0 {
		return 0, ErrNegativeVariance
	}
	return math.Sqrt(variance), nil
}

// Describe computes mean, sample variance and standard deviation in that order.
// Either all three are returned or none.
func Describe(data []float64) (Descriptive, error) {
	if len(data) < 2 {
		if len(data) == 0 {
			return Descriptive{}, ErrEmptyObservations
		}
		return Descriptive{}, ErrInsufficientObservations
	}

	mean, err := Mean(data)
	if err != nil {
		return Descriptive{}, err
	}
	variance, err := SampleVariance(data, mean)
	if err != nil {
		return Descriptive{}, err
	}
	sd, err := StdDev(variance)
	if err != nil {
		return Descriptive{}, err
	}

	return Descriptive{
		N:        len(data),
		Mean:     mean,
		Variance: variance,
		StdDev:   sd,
	}, nil
}
