package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateGate_Allow(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("denies past the limit and recovers after the window", func(t *testing.T) {
		gate := NewRateGate(3, time.Hour, clock)

		for i := 0; i < 3; i++ {
			assert.True(t, gate.Allow("user-1"), "action %d should pass", i+1)
		}
		assert.False(t, gate.Allow("user-1"))
		assert.False(t, gate.Allow("user-1"), "denied attempts must not extend the window")

		now = now.Add(59 * time.Minute)
		assert.False(t, gate.Allow("user-1"))

		now = now.Add(time.Minute)
		assert.True(t, gate.Allow("user-1"), "a fresh window starts after expiry")
	})

	t.Run("users are counted independently", func(t *testing.T) {
		gate := NewRateGate(1, time.Hour, clock)

		assert.True(t, gate.Allow("user-1"))
		assert.False(t, gate.Allow("user-1"))
		assert.True(t, gate.Allow("user-2"))
	})

	t.Run("nil clock falls back to time.Now", func(t *testing.T) {
		gate := NewRateGate(1, time.Hour, nil)
		assert.True(t, gate.Allow("user-1"))
		assert.False(t, gate.Allow("user-1"))
	})
}

func TestRateGate_Prune(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	gate := NewRateGate(5, time.Hour, func() time.Time { return now })

	assert.True(t, gate.Allow("user-1"))
	assert.True(t, gate.Allow("user-2"))
	assert.Len(t, gate.entries, 2)

	now = now.Add(time.Hour)
	gate.Prune()
	assert.Empty(t, gate.entries)

	// Pruned users start a fresh window.
	assert.True(t, gate.Allow("user-1"))
}
