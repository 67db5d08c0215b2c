package services

import (
	"sync"
	"time"
)

type gateWindow struct {
	count   int
	resetAt time.Time
}

// RateGate bounds how often a single user may trigger privileged,
// notification-producing actions: a fixed window of limit actions per
// duration, keyed by user ID, reset lazily on first use after expiry.
//
// The gate is process-local; for multi-instance deployments it should be
// backed by the shared store instead.
type RateGate struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*gateWindow
}

// NewRateGate returns a gate allowing limit actions per window per user.
// now may be nil, in which case time.Now is used.
func NewRateGate(limit int, window time.Duration, now func() time.Time) *RateGate {
	if now == nil {
		now = time.Now
	}
	return &RateGate{
		limit:   limit,
		window:  window,
		now:     now,
		entries: make(map[string]*gateWindow),
	}
}

// Allow reports whether the user may perform another action, counting it if so.
func (g *RateGate) Allow(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	e, ok := g.entries[userID]
	if !ok || !now.Before(e.resetAt) {
		g.entries[userID] = &gateWindow{count: 1, resetAt: now.Add(g.window)}
		return true
	}
	if e.count >= g.limit {
		return false
	}
	e.count++
	return true
}

// Prune drops expired windows. Optional; Allow resets expired windows lazily.
func (g *RateGate) Prune() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for userID, e := range g.entries {
		if !now.Before(e.resetAt) {
			delete(g.entries, userID)
		}
	}
}
