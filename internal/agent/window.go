package agent

import "sync"

// RecentWindow is a fixed-capacity ordered buffer of events, oldest evicted
// first. It is prompt context only; nothing reads it for delivery guarantees.
type RecentWindow struct {
	mu  sync.Mutex
	buf []Event
	cap int
}

func NewRecentWindow(capacity int) *RecentWindow {
	if capacity <= 0 {
		capacity = 50
	}
	return &RecentWindow{cap: capacity}
}

// Add appends an event, evicting the oldest past capacity. Events already in
// the window (same ID) are skipped.
func (w *RecentWindow) Add(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ev.ID != "" {
		for _, e := range w.buf {
			if e.ID == ev.ID {
				return
			}
		}
	}
	w.buf = append(w.buf, ev)
	if len(w.buf) > w.cap {
		w.buf = w.buf[len(w.buf)-w.cap:]
	}
}

// All returns a copy, oldest first.
func (w *RecentWindow) All() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.buf))
	copy(out, w.buf)
	return out
}

// ForChannel returns up to limit most recent events for one channel, oldest
// first.
func (w *RecentWindow) ForChannel(channelID string, limit int) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Event
	for _, e := range w.buf {
		if e.ChannelID == channelID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// ForFocus returns up to limit most recent events that are either in the
// focused channel or direct messages, oldest first.
func (w *RecentWindow) ForFocus(focusChannelID string, limit int) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Event
	for _, e := range w.buf {
		if e.ChannelID == focusChannelID || e.IsDM {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// ConversationMemory keeps a short per-author history of what each user said,
// for prompt context. Bounded per author.
type ConversationMemory struct {
	mu       sync.Mutex
	byAuthor map[string][]string
	perUser  int
}

func NewConversationMemory(perUser int) *ConversationMemory {
	if perUser <= 0 {
		perUser = 10
	}
	return &ConversationMemory{
		byAuthor: make(map[string][]string),
		perUser:  perUser,
	}
}

func (c *ConversationMemory) Append(authorID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hist := append(c.byAuthor[authorID], text)
	if len(hist) > c.perUser {
		hist = hist[len(hist)-c.perUser:]
	}
	c.byAuthor[authorID] = hist
}

// Recent returns up to n latest texts for an author, oldest first.
func (c *ConversationMemory) Recent(authorID string, n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	hist := c.byAuthor[authorID]
	if n > 0 && len(hist) > n {
		hist = hist[len(hist)-n:]
	}
	out := make([]string, len(hist))
	copy(out, hist)
	return out
}
