package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a block or resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout. Full blocks
// run to several megabytes of JSON, hence the generous limit.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
