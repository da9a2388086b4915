package agent

import (
	"log"
	"math/rand"
	"time"
)

// Presence activities a regular user might show. The empty entry means
// no activity at all.
var presenceActivities = []Activity{
	{Type: "playing", Name: "Visual Studio Code"},
	{Type: "playing", Name: "Minecraft"},
	{Type: "listening", Name: "Spotify"},
	{Type: "watching", Name: "YouTube"},
	{Type: "playing", Name: "Elden Ring"},
	{Type: "listening", Name: "lo-fi hip hop"},
	{},
}

// PresenceRotator changes status and activity at irregular intervals so the
// profile never looks scripted.
type PresenceRotator struct {
	platform   Platform
	rng        *rand.Rand
	now        func() time.Time
	lastChange time.Time
}

func NewPresenceRotator(platform Platform) *PresenceRotator {
	return newPresenceRotator(platform, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newPresenceRotator(platform Platform, now func() time.Time, rng *rand.Rand) *PresenceRotator {
	return &PresenceRotator{
		platform:   platform,
		rng:        rng,
		now:        now,
		lastChange: now(),
	}
}

// Maybe rotates the presence if enough time has passed since the last
// change. The threshold is redrawn every call between 30 and 120 minutes.
// While sleeping the presence pins to idle with no activity.
func (p *PresenceRotator) Maybe(sleeping bool) {
	now := p.now()
	window := time.Duration(1800+p.rng.Float64()*5400) * time.Second
	if now.Sub(p.lastChange) < window {
		return
	}
	p.lastChange = now

	if sleeping {
		if err := p.platform.SetPresence(StatusIdle, Activity{}); err != nil {
			log.Printf("[PRESENCE] update failed: %v", err)
		}
		return
	}

	status := p.pickStatus()
	activity := presenceActivities[p.rng.Intn(len(presenceActivities))]
	if err := p.platform.SetPresence(status, activity); err != nil {
		log.Printf("[PRESENCE] update failed: %v", err)
		return
	}
	log.Printf("[PRESENCE] now %s, activity %q", status, activity.Name)
}

func (p *PresenceRotator) pickStatus() string {
	r := p.rng.Float64()
	switch {
	case r < 0.7:
		return StatusOnline
	case r < 0.9:
		return StatusIdle
	default:
		return StatusDND
	}
}
