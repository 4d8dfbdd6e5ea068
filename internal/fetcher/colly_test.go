package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestColly() *CollyFetcher {
	f := NewCollyFetcher(Options{
		UserAgent:  "colly-test",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RatePerSec: 1000,
		Burst:      100,
	})
	f.retry.InitialBackoff = time.Millisecond
	f.retry.MaxBackoff = 5 * time.Millisecond
	return f
}

func TestCollyDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "colly-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>card</body></html>"))
	}))
	defer srv.Close()

	f := newTestColly()
	for range 2 {
		data, err := ReadAll(context.Background(), f, srv.URL+"/event-details/abc")
		require.NoError(t, err)
		assert.Contains(t, string(data), "card")
	}
}

func TestCollyDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("second time"))
	}))
	defer srv.Close()

	data, err := ReadAll(context.Background(), newTestColly(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "second time", string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestCollyDownload_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestColly().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCollyDownload_InvalidURL(t *testing.T) {
	_, err := newTestColly().Download(context.Background(), "relative/path")
	require.Error(t, err)
}
