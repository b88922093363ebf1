// Package fetch retrieves listing pages from the remote sites. A Fetcher
// performs a single request; a Client layers header rotation, per-request
// timeouts and the retry policy on top and returns parsed documents.
package fetch

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// Fetcher abstracts a single page request.
type Fetcher interface {
	// Fetch retrieves the HTML body of url sending the given headers.
	Fetch(ctx context.Context, url string, headers Headers) ([]byte, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns the transport name ("http" or "browser").
	Type() string
}

// Headers is one request header set.
type Headers map[string]string

// HeaderPool is a fixed set of header sets; one is chosen at random per request.
type HeaderPool []Headers

// Pick returns a random header set from the pool, or nil for an empty pool.
func (p HeaderPool) Pick() Headers {
	if len(p) == 0 {
		return nil
	}
	return p[rand.IntN(len(p))]
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
