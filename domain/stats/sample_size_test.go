package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSizeForMean_KnownScenario(t *testing.T) {
	n, err := SampleSizeForMean(2.0, 10.0, "0.95")
	require.NoError(t, err)
	assert.Equal(t, 97, n)
}

func TestSampleSizeForProportion_KnownScenario(t *testing.T) {
	n, err := SampleSizeForProportion(0.05, 0.5, "0.95")
	require.NoError(t, err)
	assert.Equal(t, 385, n)
}

func TestSampleSize_MonotoneInDesiredError(t *testing.T) {
	for _, level := range Levels() {
		prevMean, prevProp := 0, 0
		for e := 5.0; e >= 0.05; e -= 0.05 {
			nm, err := SampleSizeForMean(e, 12, level)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, nm, prevMean, "mean e=%v", e)
			prevMean = nm

			np, err := SampleSizeForProportion(e/50, 0.3, level)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, np, prevProp, "proportion e=%v", e/50)
			prevProp = np
		}
	}
}

func TestSampleSize_MeetsMargin(t *testing.T) {
	n, err := SampleSizeForMean(1.5, 9, Level99)
	require.NoError(t, err)
	assert.LessOrEqual(t, ZValue(Level99)*9/math.Sqrt(float64(n)), 1.5)

	n, err = SampleSizeForProportion(0.03, 0.4, Level90)
	require.NoError(t, err)
	ci, err := ProportionInterval(0.4, n, Level90)
	require.NoError(t, err)
	assert.LessOrEqual(t, ci.MarginOfError, 0.03)
}

func TestSampleSizeForProportion_DegenerateProportion(t *testing.T) {
	n, err := SampleSizeForProportion(0.05, 0, Level95)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSampleSize_RejectsInvalidInput(t *testing.T) {
	_, err := SampleSizeForMean(0, 10, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SampleSizeForMean(-1, 10, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SampleSizeForMean(1, 0, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SampleSizeForMean(math.Inf(1), 10, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = SampleSizeForProportion(0.05, 1.2, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SampleSizeForProportion(0, 0.5, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = SampleSizeForMean(1e-300, 1e10, Level95)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
