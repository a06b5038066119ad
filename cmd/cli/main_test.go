package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"statcalc/domain/calculation"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribe_Args(t *testing.T) {
	out, err := run(t, "describe", "10", "20", "30,40")
	require.NoError(t, err)
	assert.Contains(t, out, "Data loaded: 4 values")
	assert.Contains(t, out, "**Mean:** 25.00")
	assert.Contains(t, out, "**Variance:** 166.67")
}

func TestIntervalMean_JSON(t *testing.T) {
	out, err := run(t, "interval", "mean", "--json", "10", "20", "30", "40")
	require.NoError(t, err)

	var res calculation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Interval)
	assert.InDelta(t, 12.652, res.Interval.MarginOfError, 0.001)
}

func TestIntervalMean_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,score\na,10\nb,20\nc,30\nd,40\n"), 0o644))

	out, err := run(t, "interval", "mean-t", "--file", path, "--column", "score")
	require.NoError(t, err)
	assert.Contains(t, out, "Data loaded from "+path+": 4 values")
}

func TestDescribe_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"values":[10,20,30,40]}}`))
	}))
	defer srv.Close()

	out, err := run(t, "describe", "--url", srv.URL, "--path", "data.values")
	require.NoError(t, err)
	assert.Contains(t, out, "**Mean:** 25.00")
}

func TestSampleSize(t *testing.T) {
	out, err := run(t, "sample-size", "mean", "--error", "2", "--sigma", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "**97**")

	out, err = run(t, "sample-size", "proportion", "--error", "0.05")
	require.NoError(t, err)
	assert.Contains(t, out, "**385**")
}

func TestIntervalProportion(t *testing.T) {
	out, err := run(t, "interval", "proportion", "--p", "0.5", "--n", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "(0.40, 0.60), Error: ±0.10")

	_, err = run(t, "interval", "proportion", "--p", "1.5", "--n", "100")
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	_, err := run(t, "describe")
	assert.Error(t, err)

	_, err = run(t, "interval", "mean", "--level", "0.80", "1", "2", "3")
	assert.Error(t, err)

	_, err = run(t, "describe", "--strict", "1", "x", "3")
	assert.Error(t, err)

	_, err = run(t, "interval", "mean", "7")
	assert.Error(t, err)
}

func TestTables(t *testing.T) {
	out, err := run(t, "tables", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "1.960")
	assert.Contains(t, out, "t(1000)")

	out, err = run(t, "tables", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "worst deviation")

	_, err = run(t, "tables", "verify", "--tolerance", "0.0000001")
	assert.Error(t, err)
}
