// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"sync"
	"time"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
	"github.com/tidemark-dev/tidemark/pkg/health"
)

// DefaultHealthCooldown is how long the store is reported unavailable after
// a transport failure.
const DefaultHealthCooldown = 30 * time.Second

// HealthTracker tracks reachability of the graph store from the outcome of
// remote calls. The store is healthy until a transport failure or timeout
// is observed, then unavailable for the cooldown or until a call succeeds.
// Decode failures and precondition errors do not count: the store answered.
type HealthTracker struct {
	mu           sync.RWMutex
	healthy      bool
	failedAt     time.Time
	cooldown     time.Duration
	failureCount int64
	nowFunc      func() time.Time
}

// NewHealthTracker creates a HealthTracker that starts healthy.
// Returns an error if cooldown is zero or negative.
func NewHealthTracker(cooldown time.Duration) (*HealthTracker, error) {
	if cooldown <= 0 {
		return nil, tmerr.Errorf(tmerr.CodeConfigValidateInvalidValue,
			"health tracker cooldown must be positive, got %s", cooldown)
	}
	return newHealthTracker(cooldown), nil
}

func newHealthTracker(cooldown time.Duration) *HealthTracker {
	return &HealthTracker{
		healthy:  true,
		cooldown: cooldown,
		nowFunc:  time.Now,
	}
}

// isHealthyLocked reports whether the store is healthy or the cooldown
// has elapsed. The caller MUST hold at least h.mu.RLock.
func (h *HealthTracker) isHealthyLocked() bool {
	if h.healthy {
		return true
	}
	return h.nowFunc().Sub(h.failedAt) >= h.cooldown
}

// IsHealthy returns true if the store is healthy or the cooldown has elapsed.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isHealthyLocked()
}

// SetNowFunc overrides the time source (for testing).
func (h *HealthTracker) SetNowFunc(fn func() time.Time) {
	h.mu.Lock()
	h.nowFunc = fn
	h.mu.Unlock()
}

func (h *HealthTracker) record(err error) {
	switch {
	case err == nil:
		h.mu.Lock()
		h.healthy = true
		h.mu.Unlock()
	case KindOf(err) == KindTransport, KindOf(err) == KindTimeout:
		h.mu.Lock()
		h.healthy = false
		h.failedAt = h.nowFunc()
		h.failureCount++
		h.mu.Unlock()
	}
}

func (h *HealthTracker) ObserveWrite(_ int, err error) { h.record(err) }

// ObserveLink is a no-op; the individual writes already reported.
func (h *HealthTracker) ObserveLink(error) {}

func (h *HealthTracker) ObserveQuery(_ string, _ time.Duration, err error) { h.record(err) }

// Metrics returns a point-in-time snapshot of the tracker's state.
func (h *HealthTracker) Metrics() health.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := health.Metrics{FailureCount: h.failureCount}
	if h.failureCount > 0 {
		t := h.failedAt
		m.LastFailureAt = &t
	}
	m.Available = h.isHealthyLocked()
	if !h.healthy {
		cooldownEnd := h.failedAt.Add(h.cooldown)
		m.CooldownUntil = &cooldownEnd
	}
	return m
}
