package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-ghost/internal/agent"
	"github.com/keshon/server-ghost/internal/config"
)

// Bot is the Discord side of the agent: it owns the gateway session, feeds
// inbound messages to the runner and implements agent.Platform for the
// outbound direction.
type Bot struct {
	dg     *discordgo.Session
	cfg    *config.Config
	runner *agent.Runner
}

// NewBot creates the session without connecting.
func NewBot(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	b := &Bot{dg: dg, cfg: cfg}
	b.configureIntents()
	return b, nil
}

// SetRunner attaches the agent runner. Must be called before Run; the bot
// and the runner reference each other, so wiring happens in two steps.
func (b *Bot) SetRunner(r *agent.Runner) {
	b.runner = r
}

// Run connects and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onGuildCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	b.runner.Stop()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildPresences |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s (%s)", s.State.User.Username, s.State.User.ID)
	log.Printf("[INFO] Connected to %d servers", len(r.Guilds))
	for _, g := range r.Guilds {
		log.Printf("[INFO]  - %s (%s)", g.Name, g.ID)
	}

	if err := b.runner.Start(); err != nil {
		log.Printf("[ERR] Failed to start agent loops: %v", err)
	}
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Joined server: %s (%s)", g.Name, g.ID)
}

// onMessageCreate normalizes the event and hands it to the runner. The
// runner does its own model calls, so this runs in a fresh goroutine to keep
// the gateway handler snappy.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	ev := b.toEvent(m)
	log.Printf("[MSG] %s in %s: %.50s", ev.AuthorName, ev.ChannelName, ev.Content)
	go b.runner.HandleMessage(ev)
}

func (b *Bot) toEvent(m *discordgo.MessageCreate) agent.Event {
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == b.dg.State.User.ID {
			mentioned = true
			break
		}
	}

	ev := agent.Event{
		ID:         m.ID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		IsDM:       m.GuildID == "",
		Mentioned:  mentioned,
		At:         time.Now(),
	}

	if ev.IsDM {
		ev.ChannelName = "DM"
		ev.GuildName = "DM"
		return ev
	}
	if ch, err := b.dg.State.Channel(m.ChannelID); err == nil {
		ev.ChannelName = ch.Name
	}
	if g, err := b.dg.State.Guild(m.GuildID); err == nil {
		ev.GuildName = g.Name
	}
	return ev
}
