package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/domain"
)

// MessageLog holds the append-only message list of every conversation
type MessageLog struct {
	mu       sync.Mutex
	store    domain.KVStore
	clock    Clock
	randomID func() string

	logs map[string][]domain.Message
}

// NewMessageLog creates an empty log
func NewMessageLog(store domain.KVStore, opts ...Option) *MessageLog {
	o := buildOptions(opts)
	return &MessageLog{
		store:    store,
		clock:    o.clock,
		randomID: o.randomID,
		logs:     make(map[string][]domain.Message),
	}
}

// Load restores all logs from the store. Missing or corrupt data leaves the log empty.
func (l *MessageLog) Load(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = make(map[string][]domain.Message)

	raw, found, err := l.store.Get(ctx, domain.KeyChatMessages)
	if err != nil {
		log.Warn().Err(err).Msg("could not load chat messages")
		return
	}
	if !found {
		return
	}

	var logs map[string][]domain.Message
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		log.Warn().Err(err).Msg("stored chat messages are corrupt, starting empty")
		return
	}

	for id, msgs := range logs {
		kept := make([]domain.Message, 0, len(msgs))
		for _, m := range msgs {
			if !m.Sender.Valid() {
				log.Warn().Str("conversation_id", id).Str("message_id", m.ID).Msg("skipping message with unknown sender")
				continue
			}
			kept = append(kept, m)
		}
		l.logs[id] = kept
	}
}

// Append adds a message to the end of id's log and returns it.
// Store failures are logged; the in-memory log stays authoritative.
func (l *MessageLog) Append(ctx context.Context, id string, sender domain.Sender, content string) domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	msg := domain.Message{
		ID:        messageID(now.UnixMilli(), l.randomID()),
		Sender:    sender,
		Content:   content,
		Timestamp: domain.NewTimestamp(now),
	}

	l.logs[id] = append(l.logs[id], msg)
	l.persistLocked(ctx)
	return msg
}

// Get returns a copy of id's messages in append order
func (l *MessageLog) Get(id string) []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := l.logs[id]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear removes the log of each id
func (l *MessageLog) Clear(ctx context.Context, ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for _, id := range ids {
		if _, ok := l.logs[id]; ok {
			delete(l.logs, id)
			changed = true
		}
	}
	if changed {
		l.persistLocked(ctx)
	}
}

// Conversations returns the number of conversations with a log
func (l *MessageLog) Conversations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs)
}

func (l *MessageLog) persistLocked(ctx context.Context) {
	_ = persistJSON(ctx, l.store, domain.KeyChatMessages, l.logs)
}
