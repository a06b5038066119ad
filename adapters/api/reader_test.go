package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"statcalc/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValues(t *testing.T) {
	body := []byte(`{"data":{"readings":[1.5, "2", null, "x", 4, true]},"rows":[{"v":3},{"v":5},{"w":1}]}`)

	values, skipped, err := extractValues(body, "data.readings")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 4}, values)
	assert.Equal(t, 3, skipped)

	values, _, err = extractValues(body, "rows.#.v")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, values)

	_, _, err = extractValues(body, "missing")
	assert.Error(t, err)

	_, _, err = extractValues(body, "data")
	assert.Error(t, err)

	_, _, err = extractValues([]byte(`["a","b"]`), "")
	assert.ErrorIs(t, err, core.ErrNoObservations)
}

func TestRemoteReader_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[10,20,30,40]}`))
	}))
	defer srv.Close()

	cfg := DefaultRemoteSource(srv.URL)
	cfg.DataPath = "values"
	cfg.AuthType = "bearer"
	cfg.AuthToken = "secret"

	reader, err := NewRemoteReader(cfg)
	require.NoError(t, err)

	values, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40}, values)
	assert.Equal(t, srv.URL, reader.Origin())
}

func TestRemoteReader_HTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	reader, err := NewRemoteReader(DefaultRemoteSource(srv.URL))
	require.NoError(t, err)

	_, err = reader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRemoteSource_Validate(t *testing.T) {
	_, err := NewRemoteReader(DefaultRemoteSource("ftp://example.com/data"))
	assert.Error(t, err)

	cfg := DefaultRemoteSource("https://example.com/data")
	cfg.Timeout = 0
	_, err = NewRemoteReader(cfg)
	assert.Error(t, err)

	cfg.Timeout = time.Second
	cfg.AuthType = "oauth"
	_, err = NewRemoteReader(cfg)
	assert.Error(t, err)
}
