package agent

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-ghost/internal/ai"
	"github.com/keshon/server-ghost/internal/config"
	"github.com/keshon/server-ghost/internal/safety"
	"github.com/keshon/server-ghost/pkg/jobmgr"
)

// countingProvider counts planning calls and returns a fixed plan.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (p *countingProvider) Generate(_ context.Context, _ []ai.Message, _ ai.Options) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.reply, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakePlatform struct{}

func (fakePlatform) Guilds() []GuildRef                            { return nil }
func (fakePlatform) EligibleChannels(string) []ChannelRef          { return nil }
func (fakePlatform) ChannelInfo(string) (ChannelRef, bool)         { return ChannelRef{}, false }
func (fakePlatform) SetPresence(string, Activity) error            { return nil }
func (fakePlatform) Typing(context.Context, string, time.Duration) {}
func (fakePlatform) RecentHistory(context.Context, string, int) ([]Event, error) {
	return nil, nil
}
func (fakePlatform) SendMessage(context.Context, string, string) error   { return nil }
func (fakePlatform) Reply(context.Context, string, string, string) error { return nil }
func (fakePlatform) SendDirect(context.Context, string, string) error    { return nil }
func (fakePlatform) DeleteLastOwnMessage(context.Context, string) error  { return nil }

type fakeRecorder struct{}

func (fakeRecorder) RecordInbound(Event)                 {}
func (fakeRecorder) RecordOutbound(_, _, _, _, _ string) {}
func (fakeRecorder) RecordSuspicion(Event, string)       {}
func (fakeRecorder) Log(_, _ string)                     {}

func newTestRunner(t *testing.T, provider ai.Provider, interest float64) *Runner {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) // daytime, no sleep trigger
	gw := newTestGateway(provider, "")
	r := &Runner{
		cfg:      &config.Config{},
		state:    NewAttentionState(defaultMood, defaultPersonality, now),
		window:   NewRecentWindow(50),
		memory:   NewConversationMemory(10),
		cadence:  NewCadenceGate(),
		queue:    NewActionQueue(64),
		gateway:  gw,
		platform: fakePlatform{},
		recorder: fakeRecorder{},
		filter:   safety.New(),
		jobs:     jobmgr.NewManager(nil),
		tickMin:  5 * time.Millisecond,
		tickMax:  10 * time.Millisecond,
		rng:      newLockedRand(1),
		now:      func() time.Time { return now },
	}
	r.presence = newPresenceRotator(fakePlatform{}, r.now, rand.New(rand.NewSource(1)))
	r.state.SetFocus("g1", "c1", interest, now)
	return r
}

func TestPlannerSkipsPlanningAtLowInterest(t *testing.T) {
	provider := &countingProvider{reply: `{"action": "wait", "confidence": 0.9}`}
	r := newTestRunner(t, provider, 0.15)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	require.NoError(t, r.runPlanner(ctx))

	// The reply is a confident plan, so any planning call would have been
	// enqueued. An empty queue proves the interest floor held.
	assert.Greater(t, provider.count(), 0, "language detection should still run")
	assert.Equal(t, 0, r.queue.Len())
}

// capturingPlatform records outbound replies.
type capturingPlatform struct {
	fakePlatform
	mu      sync.Mutex
	replies []string
}

func (p *capturingPlatform) Reply(_ context.Context, _, _, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, content)
	return nil
}

// capturingRecorder records suspicion replies.
type capturingRecorder struct {
	fakeRecorder
	mu         sync.Mutex
	suspicions []string
}

func (r *capturingRecorder) RecordSuspicion(_ Event, reply string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspicions = append(r.suspicions, reply)
}

func TestTruncateStringKeepsRuneBoundary(t *testing.T) {
	s := "caffè forte"
	got := truncateString(s, 5) // cuts inside the two-byte è
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "caff", got)
	assert.Equal(t, "caffè", truncateString(s, 6))
	assert.Equal(t, s, truncateString(s, 100))
}

func TestLockedRandConcurrentDraws(t *testing.T) {
	lr := newLockedRand(7)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				v := lr.Float64()
				assert.GreaterOrEqual(t, v, 0.0)
				assert.Less(t, v, 1.0)
				n := lr.Intn(10)
				assert.Less(t, n, 10)
			}
		}()
	}
	wg.Wait()
}

func TestHandleMessageFastPathsDM(t *testing.T) {
	provider := &stubProvider{replies: []string{"FALSE"}}
	r := newTestRunner(t, provider, 0.1)

	r.HandleMessage(Event{
		ID:         "m1",
		AuthorID:   "u1",
		AuthorName: "max",
		Content:    "yo, you around?",
		ChannelID:  "dm1",
		IsDM:       true,
	})

	require.Equal(t, 1, r.queue.Len(), "a DM must enqueue a response at any interest")
	a, ok := r.queue.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, ActionRespond, a.Action)
	require.NotNil(t, a.Source)
	assert.Equal(t, "m1", a.Source.ID)
}

func TestHandleMessageSuspicionRepliesInline(t *testing.T) {
	provider := &stubProvider{replies: []string{"TRUE", "lol what, im just tired today"}}
	r := newTestRunner(t, provider, 0.5)

	pf := &capturingPlatform{}
	rec := &capturingRecorder{}
	r.platform = pf
	r.recorder = rec

	r.HandleMessage(Event{
		ID:        "m2",
		AuthorID:  "u2",
		Content:   "are you a bot?",
		ChannelID: "dm1",
		IsDM:      true,
	})

	assert.Equal(t, 0, r.queue.Len(), "suspicion bypasses the queue")
	require.Len(t, pf.replies, 1)
	assert.Equal(t, "lol what, im just tired today", pf.replies[0])
	require.Len(t, rec.suspicions, 1)
	assert.Equal(t, "lol what, im just tired today", rec.suspicions[0])
}

func TestPlannerEnqueuesConfidentPlan(t *testing.T) {
	provider := &countingProvider{reply: `{"action": "send", "target_channel": "c1", "message": "hey", "confidence": 0.9}`}
	r := newTestRunner(t, provider, 0.9)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	require.NoError(t, r.runPlanner(ctx))

	require.Greater(t, r.queue.Len(), 0, "confident plans must reach the queue")
	a, ok := r.queue.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, ActionSend, a.Action)
}
