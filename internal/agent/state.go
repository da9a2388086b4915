package agent

import (
	"sync"
	"time"
)

// Interest mechanics. Decay steps up the longer the agent goes without a
// stimulus; hitting zero forces a focus switch.
const (
	decayBase       = 0.02
	decayIdle       = 0.05
	decayStale      = 0.1
	idleThreshold   = 60 * time.Second
	staleThreshold  = 180 * time.Second
	freshFocusLevel = 0.6
	roamFocusLevel  = 0.8

	stimulusDM      = 0.5
	stimulusFocused = 0.1
)

// AttentionState is the single mutable attention record, owned by the Runner.
// All mutation goes through transition methods so interest stays in [0,1].
type AttentionState struct {
	mu             sync.Mutex
	interest       float64
	focusGuildID   string
	focusChannelID string
	lastStimulus   time.Time
	mood           string
	personality    string
	lastAction     string
	sleeping       bool
	sleepUntil     time.Time
}

// Snapshot is a read-only copy for context building.
type Snapshot struct {
	Interest       float64
	FocusGuildID   string
	FocusChannelID string
	Mood           string
	Personality    string
	LastAction     string
	Sleeping       bool
	SleepUntil     time.Time
}

// NewAttentionState creates the process-lifetime attention record. Mood and
// personality are static after this.
func NewAttentionState(mood, personality string, now time.Time) *AttentionState {
	return &AttentionState{
		mood:         mood,
		personality:  personality,
		lastAction:   "none",
		lastStimulus: now,
	}
}

func (s *AttentionState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Interest:       s.interest,
		FocusGuildID:   s.focusGuildID,
		FocusChannelID: s.focusChannelID,
		Mood:           s.mood,
		Personality:    s.personality,
		LastAction:     s.lastAction,
		Sleeping:       s.sleeping,
		SleepUntil:     s.sleepUntil,
	}
}

func (s *AttentionState) Interest() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interest
}

func (s *AttentionState) FocusChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusChannelID
}

// bump adjusts interest, clamped to [0,1]; positive stimuli refresh the
// stimulus timestamp. Callers hold the lock.
func (s *AttentionState) bump(amount float64, now time.Time) {
	s.interest = clamp01(s.interest + amount)
	if amount > 0 {
		s.lastStimulus = now
	}
}

// ApplyStimulus raises interest for an inbound event: a DM is a large bump, a
// mention pins interest to the ceiling and drags focus to that conversation, a
// message in the focused channel is a small bump. Returns true when the event
// warranted attention at all.
func (s *AttentionState) ApplyStimulus(ev Event, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	focused := ev.ChannelID == s.focusChannelID
	if !focused && !ev.Mentioned && !ev.IsDM {
		return false
	}

	switch {
	case ev.IsDM:
		// A DM is a private conversation; attention follows it.
		s.focusGuildID = ""
		s.focusChannelID = ev.ChannelID
		s.bump(stimulusDM, now)
	case ev.Mentioned:
		if ev.GuildID != "" {
			s.focusGuildID = ev.GuildID
			s.focusChannelID = ev.ChannelID
		}
		s.interest = 1.0
		s.lastStimulus = now
	default:
		s.bump(stimulusFocused, now)
	}
	return true
}

// Decay applies one planner-tick decay step. The rate is a step function of
// idle time. Returns true when interest reached zero on this tick, which
// obliges the caller to switch focus.
func (s *AttentionState) Decay(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idle := now.Sub(s.lastStimulus)
	rate := decayBase
	if idle > idleThreshold {
		rate = decayIdle
	}
	if idle > staleThreshold {
		rate = decayStale
	}
	s.bump(-rate, now)
	return s.interest <= 0
}

// SetFocus repoints attention at a conversation with the given fresh interest.
func (s *AttentionState) SetFocus(guildID, channelID string, interest float64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusGuildID = guildID
	s.focusChannelID = channelID
	s.interest = clamp01(interest)
	s.lastStimulus = now
}

func (s *AttentionState) SetLastAction(action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = action
}

// BeginSleep enters SLEEPING mode until the given time.
func (s *AttentionState) BeginSleep(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeping = true
	s.sleepUntil = until
}

// WakeUp leaves SLEEPING mode.
func (s *AttentionState) WakeUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeping = false
	s.sleepUntil = time.Time{}
}

// Sleeping reports the sleep window, if any.
func (s *AttentionState) Sleeping() (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleeping, s.sleepUntil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
