package storage

import (
	"log"
	"sync"

	"github.com/keshon/server-ghost/internal/agent"
)

// AsyncRecorder adapts Storage to the agent's recorder interface. Writes go
// through a buffered channel and a single worker so ingestion never waits on
// disk; a full buffer drops the write rather than block.
type AsyncRecorder struct {
	storage *Storage
	ops     chan func(*Storage)
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewAsyncRecorder(s *Storage) *AsyncRecorder {
	r := &AsyncRecorder{
		storage: s,
		ops:     make(chan func(*Storage), 256),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *AsyncRecorder) loop() {
	defer close(r.done)
	for op := range r.ops {
		op(r.storage)
	}
}

// Close drains pending writes and stops the worker. Writes submitted after
// Close are dropped; ingestion goroutines may still be in flight at shutdown.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ops)
	r.mu.Unlock()
	<-r.done
}

func (r *AsyncRecorder) submit(op func(*Storage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.ops <- op:
	default:
		log.Println("[STORE] recorder buffer full, dropping write")
	}
}

func (r *AsyncRecorder) RecordInbound(ev agent.Event) {
	r.submit(func(s *Storage) {
		err := s.SaveMessage(MessageRecord{
			MessageID:   ev.ID,
			AuthorID:    ev.AuthorID,
			AuthorName:  ev.AuthorName,
			ChannelID:   ev.ChannelID,
			ChannelName: ev.ChannelName,
			ServerID:    ev.GuildID,
			ServerName:  ev.GuildName,
			Content:     ev.Content,
			IsDM:        ev.IsDM,
			Datetime:    ev.At,
		})
		if err != nil {
			log.Printf("[STORE] save message: %v", err)
		}
	})
}

func (r *AsyncRecorder) RecordOutbound(channelID, channelName, guildID, content, trigger string) {
	r.submit(func(s *Storage) {
		err := s.SaveResponse(ResponseRecord{
			ChannelID:   channelID,
			ChannelName: channelName,
			ServerID:    guildID,
			Content:     content,
			Trigger:     trigger,
		})
		if err != nil {
			log.Printf("[STORE] save response: %v", err)
		}
	})
}

func (r *AsyncRecorder) RecordSuspicion(ev agent.Event, reply string) {
	r.submit(func(s *Storage) {
		err := s.SaveSuspicion(SuspicionRecord{
			AuthorID:   ev.AuthorID,
			AuthorName: ev.AuthorName,
			Content:    ev.Content,
			Reply:      reply,
		})
		if err != nil {
			log.Printf("[STORE] save suspicion: %v", err)
		}
	})
}

func (r *AsyncRecorder) Log(kind, message string) {
	r.submit(func(s *Storage) {
		if err := s.SaveLog(kind, message); err != nil {
			log.Printf("[STORE] save log: %v", err)
		}
	})
}
