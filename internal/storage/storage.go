package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/server-ghost/datastore"
)

const (
	messageHistoryLimit   = 500
	responseHistoryLimit  = 500
	suspicionHistoryLimit = 200
	logHistoryLimit       = 500
)

// Storage persists observed users, traffic and agent decisions in a single
// datastore file. All writes go through getOrCreateRecord so the on-disk
// shape stays one JSON document per collection key.
type Storage struct {
	ds *datastore.DataStore
}

// UserRecord tracks one Discord user the agent has seen.
type UserRecord struct {
	DiscordID      string    `json:"discord_id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	ServerID       string    `json:"server_id,omitempty"`
	ServerName     string    `json:"server_name,omitempty"`
	IsSuspicious   bool      `json:"is_suspicious"`
	SuspicionCount int       `json:"suspicion_count"`
}

// MessageRecord is one observed inbound message.
type MessageRecord struct {
	MessageID   string    `json:"message_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	ServerID    string    `json:"server_id,omitempty"`
	ServerName  string    `json:"server_name,omitempty"`
	Content     string    `json:"content"`
	IsDM        bool      `json:"is_dm"`
	Datetime    time.Time `json:"datetime"`
}

// ResponseRecord is one message the agent posted.
type ResponseRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	ServerID    string    `json:"server_id,omitempty"`
	Content     string    `json:"content"`
	Trigger     string    `json:"trigger"`
	Datetime    time.Time `json:"datetime"`
}

// SuspicionRecord marks an inbound message that questioned the agent's
// humanity, with the reply that went out.
type SuspicionRecord struct {
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Reply      string    `json:"reply"`
	Datetime   time.Time `json:"datetime"`
}

// LogRecord is one lifecycle entry.
type LogRecord struct {
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Datetime time.Time `json:"datetime"`
}

type record struct {
	Users      map[string]UserRecord `json:"users"`
	Messages   []MessageRecord       `json:"messages"`
	Responses  []ResponseRecord      `json:"responses"`
	Suspicions []SuspicionRecord     `json:"suspicions"`
	Logs       []LogRecord           `json:"logs"`
}

const recordKey = "agent"

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateRecord() (*record, error) {
	data, exists := s.ds.Get(recordKey)
	if !exists {
		rec := &record{Users: map[string]UserRecord{}}
		s.ds.Add(recordKey, rec)
		return rec, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var rec record
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *record: %w", err)
	}
	if rec.Users == nil {
		rec.Users = map[string]UserRecord{}
	}
	return &rec, nil
}

func (s *Storage) save(rec *record) {
	if len(rec.Messages) > messageHistoryLimit {
		rec.Messages = rec.Messages[len(rec.Messages)-messageHistoryLimit:]
	}
	if len(rec.Responses) > responseHistoryLimit {
		rec.Responses = rec.Responses[len(rec.Responses)-responseHistoryLimit:]
	}
	if len(rec.Suspicions) > suspicionHistoryLimit {
		rec.Suspicions = rec.Suspicions[len(rec.Suspicions)-suspicionHistoryLimit:]
	}
	if len(rec.Logs) > logHistoryLimit {
		rec.Logs = rec.Logs[len(rec.Logs)-logHistoryLimit:]
	}
	s.ds.Add(recordKey, rec)
}

// SaveMessage records an inbound message and refreshes the author's user row.
func (s *Storage) SaveMessage(m MessageRecord) error {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return err
	}

	now := time.Now()
	user, ok := rec.Users[m.AuthorID]
	if !ok {
		user = UserRecord{
			DiscordID: m.AuthorID,
			FirstSeen: now,
		}
	}
	user.Username = m.AuthorName
	user.LastSeen = now
	if m.ServerID != "" {
		user.ServerID = m.ServerID
		user.ServerName = m.ServerName
	}
	rec.Users[m.AuthorID] = user

	if m.Datetime.IsZero() {
		m.Datetime = now
	}
	rec.Messages = append(rec.Messages, m)
	s.save(rec)
	return nil
}

// SaveResponse records a message the agent posted.
func (s *Storage) SaveResponse(r ResponseRecord) error {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return err
	}
	if r.Datetime.IsZero() {
		r.Datetime = time.Now()
	}
	rec.Responses = append(rec.Responses, r)
	s.save(rec)
	return nil
}

// SaveSuspicion records a humanity challenge and flags the author.
func (s *Storage) SaveSuspicion(sr SuspicionRecord) error {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return err
	}
	if sr.Datetime.IsZero() {
		sr.Datetime = time.Now()
	}
	rec.Suspicions = append(rec.Suspicions, sr)

	user, ok := rec.Users[sr.AuthorID]
	if !ok {
		user = UserRecord{DiscordID: sr.AuthorID, Username: sr.AuthorName, FirstSeen: sr.Datetime}
	}
	user.IsSuspicious = true
	user.SuspicionCount++
	user.LastSeen = sr.Datetime
	rec.Users[sr.AuthorID] = user

	s.save(rec)
	return nil
}

// SaveLog records a lifecycle entry.
func (s *Storage) SaveLog(kind, message string) error {
	rec, err := s.getOrCreateRecord()
	if err != nil {
		return err
	}
	rec.Logs = append(rec.Logs, LogRecord{Kind: kind, Message: message, Datetime: time.Now()})
	s.save(rec)
	return nil
}
