// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func serveFrom(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	wrapped := rateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 0, Burst: 10}, done)(okHandler())

	for i := 0; i < 100; i++ {
		w := serveFrom(wrapped, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_ExceedsLimit(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	wrapped := rateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 3}, done)(okHandler())

	for i := 0; i < 3; i++ {
		w := serveFrom(wrapped, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should succeed", i)
	}

	w := serveFrom(wrapped, "192.168.1.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitMiddleware_PerIPIsolationIgnoringPort(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	wrapped := rateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}, done)(okHandler())

	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "10.0.0.1:2000").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(wrapped, "10.0.0.1:3000").Code)

	assert.Equal(t, http.StatusOK, serveFrom(wrapped, "10.0.0.2:1000").Code)
}

func TestVisitorLimiter_Refills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newVisitorLimiter(RateLimitConfig{RequestsPerSecond: 2, Burst: 1, MaxVisitors: 10})
	l.nowFunc = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.allow("a"))

	now = now.Add(10 * time.Second)
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"), "refill is capped at burst")
}

func TestVisitorLimiter_SweepDropsStaleAndEnforcesCap(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newVisitorLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, MaxVisitors: 2})
	l.nowFunc = func() time.Time { return now }

	l.allow("stale")
	now = now.Add(visitorStaleAfter + time.Second)
	for i := 0; i < 4; i++ {
		l.allow(fmt.Sprintf("ip-%d", i))
		now = now.Add(time.Second)
	}
	require.Equal(t, 5, l.size())

	evicted := l.sweep()
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 2, l.size())

	l.mu.Lock()
	_, keptNewest := l.visitors["ip-3"]
	_, keptOldest := l.visitors["ip-0"]
	l.mu.Unlock()
	assert.True(t, keptNewest)
	assert.False(t, keptOldest)
}

func TestRateLimitConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RateLimitConfig
		wantErr bool
	}{
		{name: "disabled", cfg: RateLimitConfig{}},
		{name: "valid", cfg: RateLimitConfig{RequestsPerSecond: 5, Burst: 10}},
		{name: "negative rate", cfg: RateLimitConfig{RequestsPerSecond: -1}, wantErr: true},
		{name: "rate without burst", cfg: RateLimitConfig{RequestsPerSecond: 5}, wantErr: true},
		{name: "negative visitors", cfg: RateLimitConfig{MaxVisitors: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, tmerr.HasCode(err, tmerr.CodeServerConfigInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, defaultMaxVisitors, cfg.MaxVisitors)
		})
	}
}
