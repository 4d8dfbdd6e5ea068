package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad selector"), false},
		{"explicit", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped explicit", fmt.Errorf("get page: %w", NewTransientError(errors.New("slow down"), 429)), true},
		{"net timeout", fmt.Errorf("dial: %w", timeoutErr{}), true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"message heuristic", errors.New("read tcp 1.2.3.4: i/o timeout"), true},
		{"status error", &StatusError{URL: "http://x", StatusCode: 404}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 403, 404, 501} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestForStatus(t *testing.T) {
	assert.NoError(t, ForStatus("http://x", 200))
	assert.NoError(t, ForStatus("http://x", 204))

	err := ForStatus("http://x/a", 503)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 503, te.StatusCode)
	assert.Contains(t, err.Error(), "status 503")

	err = ForStatus("http://x/b", 404)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "unexpected status 404 from http://x/b", se.Error())
}

func TestTransientError_Message(t *testing.T) {
	assert.Equal(t, "eof", NewTransientError(errors.New("eof"), 0).Error())
	inner := errors.New("inner")
	assert.ErrorIs(t, NewTransientError(inner, 500), inner)
}
