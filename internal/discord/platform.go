package discord

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-ghost/internal/agent"
)

// Guilds lists servers from gateway state.
func (b *Bot) Guilds() []agent.GuildRef {
	out := make([]agent.GuildRef, 0, len(b.dg.State.Guilds))
	for _, g := range b.dg.State.Guilds {
		out = append(out, agent.GuildRef{ID: g.ID, Name: g.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EligibleChannels returns text channels the agent can both read and write.
func (b *Bot) EligibleChannels(guildID string) []agent.ChannelRef {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil
	}
	var out []agent.ChannelRef
	for _, ch := range guild.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		perms, err := b.dg.State.UserChannelPermissions(b.dg.State.User.ID, ch.ID)
		if err != nil {
			continue
		}
		const needed = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
		if perms&needed != needed {
			continue
		}
		out = append(out, agent.ChannelRef{ID: ch.ID, Name: ch.Name, GuildID: guildID})
	}
	return out
}

// ChannelInfo resolves a channel from state, falling back to the API.
func (b *Bot) ChannelInfo(channelID string) (agent.ChannelRef, bool) {
	ch, err := b.dg.State.Channel(channelID)
	if err != nil {
		ch, err = b.dg.Channel(channelID)
		if err != nil {
			return agent.ChannelRef{}, false
		}
	}
	return agent.ChannelRef{ID: ch.ID, Name: ch.Name, GuildID: ch.GuildID}, true
}

// RecentHistory fetches channel history oldest first, excluding the agent's
// own messages.
func (b *Bot) RecentHistory(ctx context.Context, channelID string, limit int) ([]agent.Event, error) {
	msgs, err := b.dg.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", channelID, err)
	}

	out := make([]agent.Event, 0, len(msgs))
	// The API returns newest first.
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Author == nil || m.Author.ID == b.dg.State.User.ID {
			continue
		}
		ev := agent.Event{
			ID:         m.ID,
			AuthorID:   m.Author.ID,
			AuthorName: m.Author.Username,
			Content:    m.Content,
			ChannelID:  channelID,
			GuildID:    m.GuildID,
			IsDM:       m.GuildID == "",
			At:         time.Now(),
		}
		if ref, ok := b.ChannelInfo(channelID); ok {
			ev.ChannelName = ref.Name
		}
		out = append(out, ev)
	}
	return out, nil
}

func (b *Bot) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := b.dg.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) Reply(ctx context.Context, channelID, messageID, content string) error {
	_, err := b.dg.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))
	return err
}

func (b *Bot) SendDirect(ctx context.Context, userID, content string) error {
	ch, err := b.dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	_, err = b.dg.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	return err
}

// Typing shows the typing indicator for roughly d without blocking the
// caller. Discord keeps the indicator alive about ten seconds per trigger,
// so long durations re-trigger.
func (b *Bot) Typing(ctx context.Context, channelID string, d time.Duration) {
	go func() {
		deadline := time.Now().Add(d)
		for {
			if err := b.dg.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
				return
			}
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return
			}
			wait := 8 * time.Second
			if remaining < wait {
				wait = remaining
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

// SetPresence updates status and activity. An empty activity name clears it.
func (b *Bot) SetPresence(status string, activity agent.Activity) error {
	data := discordgo.UpdateStatusData{Status: status}
	if activity.Name != "" {
		data.Activities = []*discordgo.Activity{{
			Name: activity.Name,
			Type: activityType(activity.Type),
		}}
	}
	return b.dg.UpdateStatusComplex(data)
}

// DeleteLastOwnMessage scans recent history for the agent's own latest
// message and removes it.
func (b *Bot) DeleteLastOwnMessage(ctx context.Context, channelID string) error {
	msgs, err := b.dg.ChannelMessages(channelID, 20, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Author != nil && m.Author.ID == b.dg.State.User.ID {
			if err := b.dg.ChannelMessageDelete(channelID, m.ID, discordgo.WithContext(ctx)); err != nil {
				return err
			}
			log.Printf("[INFO] Deleted own message %s in %s", m.ID, channelID)
			return nil
		}
	}
	return nil
}

func activityType(t string) discordgo.ActivityType {
	switch t {
	case "listening":
		return discordgo.ActivityTypeListening
	case "watching":
		return discordgo.ActivityTypeWatching
	case "streaming":
		return discordgo.ActivityTypeStreaming
	default:
		return discordgo.ActivityTypeGame
	}
}
