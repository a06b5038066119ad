package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"statcalc/domain/core"
	"statcalc/domain/dataset"

	"github.com/tidwall/gjson"
)

// RemoteReader fetches an observation sequence from a JSON endpoint
type RemoteReader struct {
	config     RemoteSource
	httpClient *http.Client
}

// NewRemoteReader creates a reader for the configured endpoint
func NewRemoteReader(config RemoteSource) (*RemoteReader, error) {
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultRemoteSource("").MaxBytes
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RemoteReader{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

func (r *RemoteReader) Kind() dataset.SourceKind { return dataset.SourceRemote }
func (r *RemoteReader) Origin() string           { return r.config.URL }

// Load retrieves the document and extracts the numbers at the data path.
// Array elements that are neither numbers nor numeric strings are skipped.
func (r *RemoteReader) Load(ctx context.Context) ([]float64, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.config.Headers {
		req.Header.Set(k, v)
	}
	switch r.config.AuthType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+r.config.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", r.config.AuthToken)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > r.config.MaxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", r.config.MaxBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	values, skipped, err := extractValues(body, r.config.DataPath)
	if err != nil {
		return nil, err
	}

	log.Printf("[RemoteReader] %s: %d values, %d skipped in %v", r.config.URL, len(values), skipped, time.Since(startTime))
	return values, nil
}

// extractValues pulls numbers from the array found at path.
func extractValues(body []byte, path string) ([]float64, int, error) {
	var result gjson.Result
	if path == "" || path == "." {
		result = gjson.ParseBytes(body)
	} else {
		result = gjson.GetBytes(body, path)
	}
	if !result.Exists() {
		return nil, 0, fmt.Errorf("%w: data path '%s' not found in response", core.ErrInvalidSource, path)
	}
	if !result.IsArray() {
		return nil, 0, fmt.Errorf("%w: data path '%s' does not hold an array", core.ErrInvalidSource, path)
	}

	var values []float64
	skipped := 0
	result.ForEach(func(_, item gjson.Result) bool {
		if v, ok := numericValue(item); ok {
			values = append(values, v)
		} else {
			skipped++
		}
		return true
	})

	if len(values) == 0 {
		return nil, skipped, core.ErrNoObservations
	}
	return values, skipped, nil
}

func numericValue(item gjson.Result) (float64, bool) {
	var v float64
	switch item.Type {
	case gjson.Number:
		v = item.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(item.String(), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
