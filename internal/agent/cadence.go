package agent

import (
	"math/rand"
	"sync"
	"time"
)

// Cadence defaults: a human does not fire messages into the same channel
// every few seconds.
const (
	minSendInterval = 45 * time.Second
	jitterMin       = 5 * time.Second
	jitterMax       = 40 * time.Second
)

// CadenceGate enforces a jittered minimum interval between sends to the same
// destination. Check-and-set is atomic per call so the ingestion fast path and
// the dispatcher cannot both win the same window.
type CadenceGate struct {
	mu          sync.Mutex
	last        map[string]time.Time
	minInterval time.Duration
	jitterMin   time.Duration
	jitterMax   time.Duration
	now         func() time.Time
	rng         *rand.Rand
}

// NewCadenceGate returns a gate with production defaults.
func NewCadenceGate() *CadenceGate {
	return newCadenceGate(minSendInterval, jitterMin, jitterMax, time.Now,
		rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newCadenceGate(min, jMin, jMax time.Duration, now func() time.Time, rng *rand.Rand) *CadenceGate {
	return &CadenceGate{
		last:        make(map[string]time.Time),
		minInterval: min,
		jitterMin:   jMin,
		jitterMax:   jMax,
		now:         now,
		rng:         rng,
	}
}

// Authorize reports whether a send to channelID is allowed right now. A denial
// mutates nothing; an allowance records the send time before returning, so a
// concurrent second caller is denied.
func (g *CadenceGate) Authorize(channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	jitter := g.jitterMin + time.Duration(g.rng.Float64()*float64(g.jitterMax-g.jitterMin))
	if last, ok := g.last[channelID]; ok {
		if now.Sub(last) < g.minInterval+jitter {
			return false
		}
	}
	g.last[channelID] = now
	return true
}
