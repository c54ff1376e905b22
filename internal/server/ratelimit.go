// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package server

import (
	"cmp"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

const (
	visitorStaleAfter    = 10 * time.Minute
	visitorSweepInterval = 5 * time.Minute
	defaultMaxVisitors   = 10000
)

// RateLimitConfig configures per-IP rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per IP. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the maximum burst size per IP.
	Burst int
	// MaxVisitors caps the number of IPs tracked at once; the least recently
	// seen are evicted on sweep. Zero means the default of 10000.
	MaxVisitors int
}

// Validate checks that the RateLimitConfig is valid and applies defaults.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond < 0 {
		return tmerr.Errorf(tmerr.CodeServerConfigInvalid,
			"rate limit requests per second must not be negative (got %g)", c.RequestsPerSecond)
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return tmerr.Errorf(tmerr.CodeServerConfigInvalid,
			"rate limit burst must be positive when rate is set (got burst=%d, rate=%g)",
			c.Burst, c.RequestsPerSecond)
	}
	if c.MaxVisitors < 0 {
		return tmerr.Errorf(tmerr.CodeServerConfigInvalid,
			"rate limit max visitors must not be negative (got %d)", c.MaxVisitors)
	}
	if c.MaxVisitors == 0 {
		c.MaxVisitors = defaultMaxVisitors
	}
	return nil
}

// visitorLimiter keeps one token bucket per client IP.
type visitorLimiter struct {
	cfg     RateLimitConfig
	nowFunc func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(cfg RateLimitConfig) *visitorLimiter {
	return &visitorLimiter{
		cfg:      cfg,
		nowFunc:  time.Now,
		visitors: make(map[string]*visitor),
	}
}

// allow takes a token from ip's bucket. A new bucket starts full.
func (l *visitorLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops stale visitors, then the least recently seen ones while the
// map exceeds MaxVisitors. It returns the number evicted for the cap.
func (l *visitorLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	type seen struct {
		ip   string
		last time.Time
	}
	live := make([]seen, 0, len(l.visitors))
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorStaleAfter {
			delete(l.visitors, ip)
			continue
		}
		live = append(live, seen{ip: ip, last: v.lastSeen})
	}

	if l.cfg.MaxVisitors <= 0 || len(live) <= l.cfg.MaxVisitors {
		return 0
	}
	slices.SortFunc(live, func(a, b seen) int { return cmp.Compare(a.last.UnixNano(), b.last.UnixNano()) })
	evict := len(live) - l.cfg.MaxVisitors
	for _, s := range live[:evict] {
		delete(l.visitors, s.ip)
	}
	return evict
}

func (l *visitorLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// rateLimitMiddleware returns middleware that enforces per-IP rate limits.
// Returns a pass-through middleware when cfg.RequestsPerSecond is zero.
// The done channel stops the sweep goroutine.
func rateLimitMiddleware(cfg RateLimitConfig, done <-chan struct{}) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := newVisitorLimiter(cfg)
	go func() {
		ticker := time.NewTicker(visitorSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if evicted := limiter.sweep(); evicted > 0 {
					slog.Warn("rate limiter visitor map cap enforced",
						"evicted", evicted, "max_visitors", cfg.MaxVisitors)
				}
			case <-done:
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Limit by IP, not by connection.
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"error":"rate limit exceeded"}`)); err != nil {
					slog.Warn("failed to write rate limit response", "error", err)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
