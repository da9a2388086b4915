package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveMessageTracksUsers(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveMessage(MessageRecord{
		MessageID:  "m1",
		AuthorID:   "u1",
		AuthorName: "alice",
		ChannelID:  "c1",
		Content:    "hello",
	}))
	require.NoError(t, s.SaveMessage(MessageRecord{
		MessageID:  "m2",
		AuthorID:   "u1",
		AuthorName: "alice",
		ChannelID:  "c1",
		Content:    "again",
		IsDM:       true,
	}))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.DMMessages)
	assert.Equal(t, 0, stats.SuspiciousUsers)
}

func TestSaveSuspicionFlagsUser(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveMessage(MessageRecord{MessageID: "m1", AuthorID: "u1", AuthorName: "bob", Content: "hi"}))
	require.NoError(t, s.SaveSuspicion(SuspicionRecord{AuthorID: "u1", AuthorName: "bob", Content: "are you a bot", Reply: "lol no"}))
	require.NoError(t, s.SaveSuspicion(SuspicionRecord{AuthorID: "u1", AuthorName: "bob", Content: "seriously though", Reply: "stop"}))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SuspiciousUsers)
	assert.Equal(t, 2, stats.TotalSuspicions)

	sus, err := s.RecentSuspicions(1)
	require.NoError(t, err)
	require.Len(t, sus, 1)
	assert.Equal(t, "seriously though", sus[0].Content)
}

func TestSaveResponseAndLogs(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SaveResponse(ResponseRecord{ChannelID: "c1", Content: "yo", Trigger: "SEND"}))
	require.NoError(t, s.SaveLog("STARTUP", "agent started"))
	require.NoError(t, s.SaveLog("ROAMING", "moved on"))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AgentResponses)

	logs, err := s.RecentLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "ROAMING", logs[0].Kind, "newest first")
}

func TestHistoryCaps(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < logHistoryLimit+25; i++ {
		require.NoError(t, s.SaveLog("TICK", "entry"))
	}
	logs, err := s.RecentLogs(0)
	require.NoError(t, err)
	assert.Len(t, logs, logHistoryLimit)
}

func TestMessageDatetimeDefaults(t *testing.T) {
	s := newTestStorage(t)
	before := time.Now()
	require.NoError(t, s.SaveMessage(MessageRecord{MessageID: "m1", AuthorID: "u1"}))

	rec, err := s.getOrCreateRecord()
	require.NoError(t, err)
	require.Len(t, rec.Messages, 1)
	assert.False(t, rec.Messages[0].Datetime.Before(before))
}
