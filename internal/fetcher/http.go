package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fightstats/internal/resilience"
)

// AdaptiveLimiter wraps a rate.Limiter that speeds up by 20% on success (up
// to 2x the initial rate) and halves on 429 (down to a quarter of it).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive limiter.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows a request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess nudges the rate up.
func (a *AdaptiveLimiter) OnSuccess() {
	a.setRate(func(cur rate.Limit) rate.Limit { return min(cur*1.2, a.initialRate*2) })
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	next := a.setRate(func(cur rate.Limit) rate.Limit { return max(cur*0.5, a.initialRate/4) })
	zap.L().Warn("fetcher: 429 received, reducing rate", zap.Float64("new_rate", float64(next)))
}

func (a *AdaptiveLimiter) setRate(f func(rate.Limit) rate.Limit) rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = f(a.currentRate)
	a.limiter.SetLimit(a.currentRate)
	return a.currentRate
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher with net/http, one adaptive limiter per
// host and transient-failure retries.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
	retry  resilience.RetryConfig

	mu    sync.Mutex
	hosts map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:  opts,
		retry: retry,
		hosts: make(map[string]*AdaptiveLimiter),
	}
}

func (f *HTTPFetcher) limiterFor(host string) *AdaptiveLimiter {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.hosts[host]
	if !ok {
		lim = NewAdaptiveLimiter(rate.Limit(f.opts.RatePerSec), f.opts.Burst)
		f.hosts[host] = lim
	}
	return lim
}

// Download GETs rawURL and returns the body of a 2xx response. 408, 429,
// 5xx and network failures are retried; other statuses fail at once.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, eris.Errorf("fetcher: invalid url %q", rawURL)
	}
	lim := f.limiterFor(u.Host)

	cfg := f.retry
	cfg.OnRetry = resilience.RetryLogger(BackendHTTP, rawURL)

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*http.Response, error) {
		return f.once(ctx, lim, rawURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: download %s", rawURL)
	}
	return resp.Body, nil
}

func (f *HTTPFetcher) once(ctx context.Context, lim *AdaptiveLimiter, rawURL string) (*http.Response, error) {
	if err := lim.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if err := resilience.ForStatus(rawURL, resp.StatusCode); err != nil {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			lim.OnRateLimit()
		}
		return nil, err
	}

	lim.OnSuccess()
	return resp, nil
}
