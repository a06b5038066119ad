package stats

import (
	"math/rand"
	"testing"

	mstats "github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_KnownSequence(t *testing.T) {
	d, err := Describe([]float64{10, 20, 30, 40})
	require.NoError(t, err)

	assert.Equal(t, 4, d.N)
	assert.InDelta(t, 25.0, d.Mean, 1e-12)
	assert.InDelta(t, 166.667, d.Variance, 0.001)
	assert.InDelta(t, 12.910, d.StdDev, 0.001)
}

func TestDescribe_MatchesReferenceLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]float64, 257)
	for i := range data {
		data[i] = rng.NormFloat64()*3.5 + 40
	}

	d, err := Describe(data)
	require.NoError(t, err)

	wantMean, _ := mstats.Mean(data)
	wantVar, _ := mstats.SampleVariance(data)
	wantSD, _ := mstats.StandardDeviationSample(data)

	assert.InDelta(t, wantMean, d.Mean, 1e-9)
	assert.InDelta(t, wantVar, d.Variance, 1e-9)
	assert.InDelta(t, wantSD, d.StdDev, 1e-9)
}

func TestDescribe_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := make([]float64, 50)
	for i := range data {
		data[i] = rng.Float64() * 100
	}
	base, err := Describe(data)
	require.NoError(t, err)

	for round := 0; round < 5; round++ {
		shuffled := append([]float64(nil), data...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Describe(shuffled)
		require.NoError(t, err)
		assert.InDelta(t, base.Mean, got.Mean, 1e-9)
		assert.InDelta(t, base.Variance, got.Variance, 1e-9)
		assert.InDelta(t, base.StdDev, got.StdDev, 1e-9)
	}
}

func TestDescribe_ScaleConsistent(t *testing.T) {
	data := []float64{3, 7, 7, 19, 24, 1.5}
	base, err := Describe(data)
	require.NoError(t, err)

	for _, k := range []float64{2, -3, 0.5} {
		scaled := make([]float64, len(data))
		for i, x := range data {
			scaled[i] = k * x
		}
		got, err := Describe(scaled)
		require.NoError(t, err)

		assert.InDelta(t, k*k*base.Variance, got.Variance, 1e-9, "k=%v", k)
		assert.InDelta(t, absFloat(k)*base.StdDev, got.StdDev, 1e-9, "k=%v", k)
	}
}

func TestDescribe_RejectsShortSequences(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, ErrEmptyObservations)

	_, err = Describe([]float64{4})
	assert.ErrorIs(t, err, ErrInsufficientObservations)
}

func TestMean(t *testing.T) {
	m, err := Mean([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, m)

	_, err = Mean([]float64{})
	assert.ErrorIs(t, err, ErrEmptyObservations)
}

func TestSampleVariance_ConstantSequenceIsZero(t *testing.T) {
	v, err := SampleVariance([]float64{2, 2, 2}, 2)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = SampleVariance([]float64{2}, 2)
	assert.ErrorIs(t, err, ErrInsufficientObservations)
}

func TestStdDev_GuardsNegativeVariance(t *testing.T) {
	sd, err := StdDev(16)
	require.NoError(t, err)
	assert.Equal(t, 4.0, sd)

	_, err = StdDev(-0.1)
	assert.ErrorIs(t, err, ErrNegativeVariance)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
