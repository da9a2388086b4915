package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStimulus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ignores unfocused channel without mention", func(t *testing.T) {
		s := NewAttentionState("chill", "dry", now)
		s.SetFocus("g1", "c1", 0.6, now)

		ok := s.ApplyStimulus(Event{ChannelID: "c2", GuildID: "g1"}, now)
		assert.False(t, ok)
		assert.InDelta(t, 0.6, s.Interest(), 1e-9)
	})

	t.Run("DM bumps interest and pulls focus", func(t *testing.T) {
		s := NewAttentionState("chill", "dry", now)
		s.SetFocus("g1", "c1", 0, now)

		ok := s.ApplyStimulus(Event{ChannelID: "dm1", IsDM: true}, now)
		require.True(t, ok)
		assert.InDelta(t, 0.5, s.Interest(), 1e-9)
		assert.Equal(t, "dm1", s.FocusChannelID())
	})

	t.Run("mention pins interest and drags focus", func(t *testing.T) {
		s := NewAttentionState("chill", "dry", now)
		s.SetFocus("g1", "c1", 0.3, now)

		ok := s.ApplyStimulus(Event{ChannelID: "c2", GuildID: "g2", Mentioned: true}, now)
		require.True(t, ok)
		assert.Equal(t, 1.0, s.Interest())
		assert.Equal(t, "c2", s.FocusChannelID())
	})

	t.Run("focused channel message is a small bump", func(t *testing.T) {
		s := NewAttentionState("chill", "dry", now)
		s.SetFocus("g1", "c1", 0.6, now)

		ok := s.ApplyStimulus(Event{ChannelID: "c1", GuildID: "g1"}, now)
		require.True(t, ok)
		assert.InDelta(t, 0.7, s.Interest(), 1e-9)
	})

	t.Run("interest never exceeds one", func(t *testing.T) {
		s := NewAttentionState("chill", "dry", now)
		s.SetFocus("g1", "dm1", 0.9, now)
		s.ApplyStimulus(Event{ChannelID: "dm1", IsDM: true}, now)
		assert.Equal(t, 1.0, s.Interest())
	})
}

func TestDecayRates(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		idle time.Duration
		want float64
	}{
		{"fresh stimulus decays slowly", 10 * time.Second, 0.02},
		{"idle past a minute decays faster", 90 * time.Second, 0.05},
		{"stale past three minutes decays fastest", 200 * time.Second, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAttentionState("chill", "dry", start)
			s.SetFocus("g1", "c1", 0.6, start)

			s.Decay(start.Add(tt.idle))
			assert.InDelta(t, 0.6-tt.want, s.Interest(), 1e-9)
		})
	}
}

func TestDecaySignalsFocusSwitch(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewAttentionState("chill", "dry", start)
	s.SetFocus("g1", "c1", 0.05, start)

	// Base rate is 0.02 per tick, so 0.05 drains to zero on the third tick.
	now := start
	switched := false
	for i := 0; i < 3; i++ {
		now = now.Add(10 * time.Second)
		switched = s.Decay(now)
	}
	assert.True(t, switched, "interest reaching zero must trigger a switch")
	assert.Equal(t, 0.0, s.Interest())

	// Nothing below zero.
	s.Decay(now.Add(10 * time.Second))
	assert.Equal(t, 0.0, s.Interest())
}

func TestSleepWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	s := NewAttentionState("chill", "dry", now)

	sleeping, _ := s.Sleeping()
	require.False(t, sleeping)

	until := now.Add(6 * time.Hour)
	s.BeginSleep(until)
	sleeping, got := s.Sleeping()
	require.True(t, sleeping)
	assert.Equal(t, until, got)

	s.WakeUp()
	sleeping, _ = s.Sleeping()
	assert.False(t, sleeping)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.3))
	assert.Equal(t, 1.0, clamp01(1.7))
	assert.Equal(t, 0.4, clamp01(0.4))
}
