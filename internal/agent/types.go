package agent

import "time"

// Event is one inbound message as seen by the agent, normalized away from any
// platform types.
type Event struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	ChannelID   string    `json:"channel"`
	ChannelName string    `json:"channel_name"`
	GuildID     string    `json:"guild,omitempty"`
	GuildName   string    `json:"guild_name,omitempty"`
	IsDM        bool      `json:"is_dm"`
	Mentioned   bool      `json:"-"`
	At          time.Time `json:"timestamp"`
}

// GuildRef identifies a guild the agent can see.
type GuildRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChannelRef identifies a channel within a guild.
type ChannelRef struct {
	ID      string
	Name    string
	GuildID string
}

// Activity is a presence activity descriptor ("playing X", "listening to Y").
type Activity struct {
	Type string // "playing" | "listening" | "watching" | ""
	Name string
}

// Presence statuses understood by the platform adapter.
const (
	StatusOnline = "online"
	StatusIdle   = "idle"
	StatusDND    = "dnd"
)
