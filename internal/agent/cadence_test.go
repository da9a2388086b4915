package agent

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCadenceGate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	gate := newCadenceGate(45*time.Second, 5*time.Second, 40*time.Second,
		func() time.Time { return current }, rand.New(rand.NewSource(1)))

	require.True(t, gate.Authorize("c1"), "first send is always allowed")

	// Even at maximum jitter the window closes at 85s.
	current = base.Add(44 * time.Second)
	assert.False(t, gate.Authorize("c1"))

	current = base.Add(86 * time.Second)
	assert.True(t, gate.Authorize("c1"))
}

func TestCadenceGateDenialDoesNotResetWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	gate := newCadenceGate(45*time.Second, 5*time.Second, 40*time.Second,
		func() time.Time { return current }, rand.New(rand.NewSource(1)))

	require.True(t, gate.Authorize("c1"))

	// Repeated denials must not push the window forward.
	for i := 1; i <= 8; i++ {
		current = base.Add(time.Duration(i) * 5 * time.Second)
		gate.Authorize("c1")
	}
	current = base.Add(86 * time.Second)
	assert.True(t, gate.Authorize("c1"))
}

func TestCadenceGateIsPerChannel(t *testing.T) {
	gate := NewCadenceGate()
	require.True(t, gate.Authorize("c1"))
	assert.True(t, gate.Authorize("c2"), "a send elsewhere is unrelated")
	assert.False(t, gate.Authorize("c1"))
}
