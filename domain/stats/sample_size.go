package stats

import "math"

// maxSampleSize keeps the float to int conversion exact.
const maxSampleSize = 1 << 53

// SampleSizeForMean returns the smallest n whose z-based margin of error for a mean
// does not exceed desiredError, given the population standard deviation sigma.
func SampleSizeForMean(desiredError, sigma float64, level ConfidenceLevel) (int, error) {
	if err := checkPositive("desired_error", desiredError); err != nil {
		return 0, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return 0, err
	}

	r := ZValue(level) * sigma / desiredError
	return ceilSampleSize(r * r)
}

// SampleSizeForProportion returns the smallest n whose margin of error for a proportion
// estimated at p does not exceed desiredError.
func SampleSizeForProportion(desiredError, p float64, level ConfidenceLevel) (int, error) {
	if err := checkPositive("desired_error", desiredError); err != nil {
		return 0, err
	}
	if err := checkProportion("p", p); err != nil {
		return 0, err
	}

	z := ZValue(level)
	return ceilSampleSize(z * z * p * (1 - p) / (desiredError * desiredError))
}

// ceilSampleSize rounds up and never reports fewer than one observation.
func ceilSampleSize(v float64) (int, error) {
	n := math.Ceil(v)
	if math.IsNaN(n) || n >= maxSampleSize {
		return 0, invalidParameter("sample_size", v, "is out of range")
	}
	if n < 1 {
		return 1, nil
	}
	return int(n), nil
}
