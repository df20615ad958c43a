// Package fetcher defines how sitetext retrieves resources over HTTP.
// Implement the Fetcher interface to plug in a different transport
// (a recorded fixture set, a caching proxy, and so on).
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	// Fetch performs a single GET request.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static").
	Type() string
}

// Options controls a single fetch.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content is a fetched response.
type Content struct {
	URL         string
	Body        []byte
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// ErrHTTPStatus indicates the server answered with a non-2xx status.
// Check with errors.Is(err, fetcher.ErrHTTPStatus).
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// StatusError carries the status code of a rejected response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d from %s", ErrHTTPStatus, e.StatusCode, e.URL)
}

// Is reports whether target is ErrHTTPStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
