package agent

import (
	"context"
	"time"
)

// Platform is the chat surface the agent operates on. The discord package
// implements it; tests substitute fakes.
type Platform interface {
	// Guilds lists servers the agent is a member of.
	Guilds() []GuildRef
	// EligibleChannels lists text channels in the guild the agent can
	// both read and write.
	EligibleChannels(guildID string) []ChannelRef
	// ChannelInfo resolves a channel ID into its ref, reporting whether
	// it is known.
	ChannelInfo(channelID string) (ChannelRef, bool)
	// RecentHistory returns up to limit messages from the channel,
	// oldest first, excluding the agent's own.
	RecentHistory(ctx context.Context, channelID string, limit int) ([]Event, error)
	// SendMessage posts to a channel.
	SendMessage(ctx context.Context, channelID, content string) error
	// Reply posts to a channel referencing a prior message.
	Reply(ctx context.Context, channelID, messageID, content string) error
	// SendDirect opens (or reuses) a DM with the user and posts there.
	SendDirect(ctx context.Context, userID, content string) error
	// Typing shows the typing indicator for roughly the given duration.
	Typing(ctx context.Context, channelID string, d time.Duration)
	// SetPresence updates status and activity.
	SetPresence(status string, activity Activity) error
	// DeleteLastOwnMessage removes the agent's most recent message in
	// the channel, if any.
	DeleteLastOwnMessage(ctx context.Context, channelID string) error
}

// Recorder persists observed traffic and agent decisions. Implementations
// must not block the caller; failures are logged, never surfaced.
type Recorder interface {
	RecordInbound(ev Event)
	RecordOutbound(channelID, channelName, guildID, content, trigger string)
	RecordSuspicion(ev Event, reply string)
	Log(kind, message string)
}
