package container

import (
	"context"
	"testing"

	"statcalc/domain/calculation"
	"statcalc/domain/stats"
	"statcalc/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite3", URL: ":memory:"},
		Calc: config.CalcConfig{
			DefaultLevel:     stats.Level99,
			BatchConcurrency: 2,
			LogLevel:         "ERROR",
		},
	}
}

func TestContainer_WithDatabase(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(ctx))
	defer c.Shutdown(ctx)

	require.NotNil(t, c.Datasets)
	require.NotNil(t, c.APIHandler())

	res, err := c.Calculator.Evaluate(ctx, calculation.Request{
		Kind:         calculation.KindMeanInterval,
		Observations: []float64{1, 2, 3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, stats.Level99, res.Level)

	recent, err := c.Calculator.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestContainer_WithoutDatabase(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	c.InitWithoutDatabase()
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.Datasets)
	assert.NotNil(t, c.Calculator)
	assert.NotNil(t, c.Batch)

	_, err = New(nil)
	assert.Error(t, err)
}
