package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/fightstats/internal/resilience"
)

// CollyFetcher implements Fetcher on top of a colly collector. A fresh
// collector serves each attempt so visited-URL bookkeeping never blocks a
// re-fetch; politeness comes from a per-host limiter shared across calls.
type CollyFetcher struct {
	opts  Options
	retry resilience.RetryConfig

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewCollyFetcher creates a CollyFetcher.
func NewCollyFetcher(opts Options) *CollyFetcher {
	opts = opts.withDefaults()
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries
	return &CollyFetcher{
		opts:  opts,
		retry: retry,
		hosts: make(map[string]*rate.Limiter),
	}
}

func (f *CollyFetcher) limiterFor(host string) *rate.Limiter {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RatePerSec), f.opts.Burst)
		f.hosts[host] = lim
	}
	return lim
}

// Download fetches rawURL through colly and returns the buffered body.
func (f *CollyFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, eris.Errorf("fetcher: invalid url %q", rawURL)
	}
	lim := f.limiterFor(u.Hostname())

	cfg := f.retry
	cfg.OnRetry = resilience.RetryLogger(BackendColly, rawURL)

	body, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
		return f.once(ctx, rawURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: colly download %s", rawURL)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *CollyFetcher) once(ctx context.Context, rawURL string) ([]byte, error) {
	c := f.newCollector()

	var body []byte
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	err := c.Request(http.MethodGet, rawURL, nil, collyCtx, nil)
	if status != 0 {
		if serr := resilience.ForStatus(rawURL, status); serr != nil {
			return nil, serr
		}
	}
	if err == nil {
		err = reqErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return body, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})
	return c
}
