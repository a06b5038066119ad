package reference

import (
	"testing"

	"statcalc/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactZ(t *testing.T) {
	assert.InDelta(t, 1.6449, ExactZ(stats.Level90), 1e-4)
	assert.InDelta(t, 1.9600, ExactZ(stats.Level95), 1e-4)
	assert.InDelta(t, 2.5758, ExactZ(stats.Level99), 1e-4)
}

func TestExactT_ApproachesZ(t *testing.T) {
	assert.InDelta(t, 2.2281, ExactT(stats.Level95, 10), 1e-4)
	assert.Greater(t, ExactT(stats.Level95, 10), ExactT(stats.Level95, 100))
	assert.InDelta(t, ExactZ(stats.Level95), ExactT(stats.Level95, 1_000_000), 1e-4)
}

func TestVerifyTables_WithinTolerance(t *testing.T) {
	devs := VerifyTables()
	require.Len(t, devs, 3+3*len(stats.DFBuckets()))

	for _, d := range devs {
		assert.Less(t, d.AbsDiff, 0.002, "%s %s df=%d tabulated=%v exact=%v", d.Kind, d.Level, d.DF, d.Tabulated, d.Exact)
	}

	worst, ok := Worst(devs)
	require.True(t, ok)
	for _, d := range devs {
		assert.LessOrEqual(t, d.AbsDiff, worst.AbsDiff)
	}

	_, ok = Worst(nil)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	s, err := NewSummarizer().Summarize([]float64{40, 10, 30, 20})
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.Equal(t, 25.0, s.Median)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)

	_, err = NewSummarizer().Summarize(nil)
	assert.ErrorIs(t, err, stats.ErrEmptyObservations)
}
