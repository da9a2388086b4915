package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math/rand"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keshon/server-ghost/internal/config"
	"github.com/keshon/server-ghost/internal/safety"
	"github.com/keshon/server-ghost/pkg/jobmgr"
	"github.com/keshon/server-ghost/pkg/util"
)

const (
	defaultMood        = "chill"
	defaultPersonality = "sarcastic, direct, ironic, sometimes chaotic"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// lockedRand serializes draws from one rand.Rand. The planner and dispatcher
// loops run in separate goroutines and share it.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Runner owns the agent: attention state, the recent-message window, the
// planner and dispatcher loops, and message ingestion. One Runner per
// Discord session.
type Runner struct {
	cfg      *config.Config
	state    *AttentionState
	window   *RecentWindow
	memory   *ConversationMemory
	cadence  *CadenceGate
	queue    *ActionQueue
	gateway  *Gateway
	platform Platform
	recorder Recorder
	filter   *safety.Filter
	presence *PresenceRotator
	jobs     *jobmgr.Manager

	sessionID        string
	tokenFingerprint string

	// Planner inter-tick bounds; shrunk in tests.
	tickMin time.Duration
	tickMax time.Duration

	rng *lockedRand
	now func() time.Time
}

func NewRunner(cfg *config.Config, gateway *Gateway, platform Platform, recorder Recorder) *Runner {
	now := time.Now
	fp := sha256.Sum256([]byte(cfg.DiscordToken))
	return &Runner{
		cfg:              cfg,
		state:            NewAttentionState(defaultMood, defaultPersonality, now()),
		window:           NewRecentWindow(50),
		memory:           NewConversationMemory(10),
		cadence:          NewCadenceGate(),
		queue:            NewActionQueue(128),
		gateway:          gateway,
		platform:         platform,
		recorder:         recorder,
		filter:           safety.New(),
		presence:         NewPresenceRotator(platform),
		jobs:             jobmgr.NewManager(func(s string) { log.Printf("[JOB] %s", s) }),
		sessionID:        uuid.NewString(),
		tokenFingerprint: hex.EncodeToString(fp[:])[:12],
		tickMin:          8 * time.Second,
		tickMax:          16 * time.Second,
		rng:              newLockedRand(time.Now().UnixNano()),
		now:              now,
	}
}

// Start launches the planner and dispatcher loops and runs startup
// housekeeping. Call once, after the platform is connected.
func (r *Runner) Start() error {
	log.Printf("[AGENT] session %s token fp %s", r.sessionID, r.tokenFingerprint)
	r.recorder.Log("STARTUP", "agent started, session "+r.sessionID)

	// Blocked channels get scrubbed of leftover agent messages on startup.
	_ = util.Parallel(r.cfg.BlockedChannelIDs, 4, func(ctx context.Context, id string) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := r.platform.DeleteLastOwnMessage(ctx, id); err != nil {
			log.Printf("[CLEANUP] channel %s: %v", id, err)
		}
		return nil
	})

	if err := r.jobs.StartAsync("planner", r.runPlanner); err != nil {
		return err
	}
	return r.jobs.StartAsync("dispatcher", r.runDispatcher)
}

// Stop cancels the loops.
func (r *Runner) Stop() {
	_ = r.jobs.Stop("planner")
	_ = r.jobs.Stop("dispatcher")
}

// HandleMessage ingests one inbound message. It is called from the platform
// event handler in its own goroutine; everything here must stay cheap except
// the suspicion probe, which is the one inline model call the agent makes.
func (r *Runner) HandleMessage(ev Event) {
	r.recorder.RecordInbound(ev)

	now := r.now()
	if !r.state.ApplyStimulus(ev, now) {
		return
	}

	r.window.Add(ev)
	r.memory.Append(ev.AuthorID, ev.Content)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if r.gateway.DetectSuspicion(ctx, ev.Content) {
		log.Printf("[SUSPICION] detected in message %s", ev.ID)
		r.handleSuspicion(ctx, ev)
		return
	}

	r.queue.Enqueue(respondAction(ev))
}

// handleSuspicion replies immediately with a deny-being-AI generation,
// bypassing the queue so the answer lands while the question is fresh.
func (r *Runner) handleSuspicion(ctx context.Context, ev Event) {
	reply, err := r.gateway.Converse(ctx, ev.Content, PromptContext{
		ServerName:     ev.GuildName,
		ChannelName:    ev.ChannelName,
		Language:       r.cfg.DefaultLanguage,
		SuspicionCheck: true,
	})
	if err != nil {
		log.Printf("[SUSPICION] generation failed: %v", err)
		return
	}
	if ok, reason := r.filter.IsSafe(reply); !ok {
		log.Printf("[SAFETY] blocked suspicion reply: %s", reason)
		reply = "..."
	}
	if err := r.platform.Reply(ctx, ev.ChannelID, ev.ID, reply); err != nil {
		log.Printf("[SUSPICION] reply failed: %v", err)
		return
	}
	r.recorder.RecordSuspicion(ev, reply)
	r.recorder.Log("SUSPICION_REPLY", truncateString(reply, 100))
}

// switchFocus moves attention to a new guild and channel after interest
// ran out. The priority guild wins when configured, otherwise chance
// decides; a few messages of history seed the window so planning has
// something to chew on.
func (r *Runner) switchFocus(ctx context.Context) {
	guilds := r.platform.Guilds()
	if len(guilds) == 0 {
		return
	}

	var guild GuildRef
	picked := false
	if r.cfg.PriorityGuildID != "" {
		for _, g := range guilds {
			if g.ID == r.cfg.PriorityGuildID {
				guild = g
				picked = true
				break
			}
		}
	}
	if !picked {
		guild = guilds[r.rng.Intn(len(guilds))]
	}

	channels := r.platform.EligibleChannels(guild.ID)
	if len(channels) == 0 {
		return
	}
	channel := channels[r.rng.Intn(len(channels))]

	r.state.SetFocus(guild.ID, channel.ID, freshFocusLevel, r.now())
	log.Printf("[ROAMING] focus now %s #%s", guild.Name, channel.Name)
	r.recorder.Log("ROAMING", "switched focus to "+guild.Name+" #"+channel.Name)

	history, err := r.platform.RecentHistory(ctx, channel.ID, 5)
	if err != nil {
		log.Printf("[ROAMING] history read failed: %v", err)
		return
	}
	for _, ev := range history {
		r.window.Add(ev)
	}
}

// truncateString cuts s to at most n bytes without splitting a rune.
func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
