// Package fetcher downloads listing, card and fight pages. It owns retry,
// backoff and rate limiting so nothing downstream has to.
package fetcher

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a page body.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Backend names accepted by New.
const (
	BackendHTTP  = "http"
	BackendColly = "colly"
)

// Options configures either backend.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
	Burst      int
}

const defaultUserAgent = "fightstats/1.0"

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 2
	}
	if o.Burst <= 0 {
		o.Burst = 2
	}
	return o
}

// New builds the fetcher for backend ("http" or "colly").
func New(backend string, opts Options) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendHTTP:
		return NewHTTPFetcher(opts), nil
	case BackendColly:
		return NewCollyFetcher(opts), nil
	default:
		return nil, eris.Errorf("fetcher: unknown backend %q", backend)
	}
}

// ReadAll downloads url and returns the whole body.
func ReadAll(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body of %s", url)
	}
	return data, nil
}
