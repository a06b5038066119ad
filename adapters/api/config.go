package api

import (
	"fmt"
	"net/url"
	"time"

	"statcalc/domain/core"
)

// RemoteSource describes a JSON endpoint that serves observations
type RemoteSource struct {
	URL       string            `json:"url"`
	DataPath  string            `json:"data_path"` // gjson path to the array of values; empty means the document root
	Timeout   time.Duration     `json:"timeout"`
	AuthType  string            `json:"auth_type"` // "", "bearer" or "api_key"
	AuthToken string            `json:"-"`
	Headers   map[string]string `json:"headers,omitempty"`
	MaxBytes  int64             `json:"max_bytes"`
}

// DefaultRemoteSource returns sensible defaults for remote ingestion
func DefaultRemoteSource(rawURL string) RemoteSource {
	return RemoteSource{
		URL:      rawURL,
		Timeout:  10 * time.Second,
		MaxBytes: 8 << 20,
	}
}

// Validate checks if the configuration is valid
func (c RemoteSource) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "URL", Message: fmt.Sprintf("%q is not an http(s) URL", c.URL)}
	}
	if c.Timeout <= 0 {
		return &ValidationError{Field: "Timeout", Message: "must be positive"}
	}
	switch c.AuthType {
	case "", "bearer", "api_key":
	default:
		return &ValidationError{Field: "AuthType", Message: fmt.Sprintf("unsupported auth type %q", c.AuthType)}
	}
	return nil
}

// ValidationError reports an invalid remote source setting
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return core.ErrInvalidSource
}
