package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentWindow(t *testing.T) {
	w := NewRecentWindow(3)
	w.Add(Event{ID: "1", ChannelID: "c1", Content: "a"})
	w.Add(Event{ID: "2", ChannelID: "c2", Content: "b"})
	w.Add(Event{ID: "1", ChannelID: "c1", Content: "a"}) // duplicate
	require.Len(t, w.All(), 2)

	w.Add(Event{ID: "3", ChannelID: "c1", Content: "c"})
	w.Add(Event{ID: "4", ChannelID: "c1", Content: "d"})
	all := w.All()
	require.Len(t, all, 3, "oldest entry evicted at capacity")
	assert.Equal(t, "2", all[0].ID)
}

func TestRecentWindowForChannel(t *testing.T) {
	w := NewRecentWindow(10)
	for i := 0; i < 6; i++ {
		w.Add(Event{ID: fmt.Sprintf("a%d", i), ChannelID: "c1"})
		w.Add(Event{ID: fmt.Sprintf("b%d", i), ChannelID: "c2"})
	}

	got := w.ForChannel("c1", 4)
	require.Len(t, got, 4)
	assert.Equal(t, "a2", got[0].ID, "limit keeps the newest entries")
	assert.Equal(t, "a5", got[3].ID)
}

func TestRecentWindowForFocusIncludesDMs(t *testing.T) {
	w := NewRecentWindow(10)
	w.Add(Event{ID: "1", ChannelID: "c1"})
	w.Add(Event{ID: "2", ChannelID: "dm1", IsDM: true})
	w.Add(Event{ID: "3", ChannelID: "c2"})

	got := w.ForFocus("c1", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestConversationMemory(t *testing.T) {
	m := NewConversationMemory(3)
	for i := 0; i < 5; i++ {
		m.Append("u1", fmt.Sprintf("msg%d", i))
	}
	m.Append("u2", "other")

	got := m.Recent("u1", 10)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"msg2", "msg3", "msg4"}, got)

	assert.Len(t, m.Recent("u2", 10), 1)
	assert.Empty(t, m.Recent("nobody", 10))
}
