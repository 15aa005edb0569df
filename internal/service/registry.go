package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/domain"
)

const titleEllipsis = "..."

// SessionRegistry keeps the bounded, most-recent-first list of conversation summaries
type SessionRegistry struct {
	mu       sync.Mutex
	store    domain.KVStore
	capacity int
	titleMax int
	clock    Clock

	entries []domain.ConversationSummary
	lastID  int64
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry(store domain.KVStore, cfg config.HistoryConfig, opts ...Option) *SessionRegistry {
	o := buildOptions(opts)
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10
	}
	titleMax := cfg.TitleMaxChars
	if titleMax <= 0 {
		titleMax = 50
	}
	return &SessionRegistry{
		store:    store,
		capacity: capacity,
		titleMax: titleMax,
		clock:    o.clock,
	}
}

// Load restores the registry from the store. Missing or corrupt data leaves it empty.
func (r *SessionRegistry) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil

	raw, found, err := r.store.Get(ctx, domain.KeyChatHistory)
	if err != nil {
		log.Warn().Err(err).Msg("could not load chat history")
		return
	}
	if !found {
		return
	}

	var entries []domain.ConversationSummary
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warn().Err(err).Msg("stored chat history is corrupt, starting empty")
		return
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		r.entries = append(r.entries, e)
		if len(r.entries) == r.capacity {
			break
		}
	}

	log.Debug().Int("count", len(r.entries)).Msg("chat history loaded")
}

// CreateConversation returns a fresh time-based id. The conversation is not inserted.
func (r *SessionRegistry) CreateConversation() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms := r.clock().UnixMilli()
	if ms <= r.lastID {
		ms = r.lastID + 1
	}
	for r.indexLocked(conversationID(ms)) >= 0 {
		ms++
	}
	r.lastID = ms
	return conversationID(ms)
}

// RecordFirstMessage inserts id at the front titled after text. Entries pushed past
// capacity are dropped and returned. Nothing happens when id is already present.
func (r *SessionRegistry) RecordFirstMessage(ctx context.Context, id, text string) (evicted []domain.ConversationSummary, inserted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(id) >= 0 {
		return nil, false
	}

	entry := domain.ConversationSummary{
		ID:        id,
		Title:     Truncate(text, r.titleMax, titleEllipsis),
		Timestamp: domain.NewTimestamp(r.clock()),
	}

	r.entries = append([]domain.ConversationSummary{entry}, r.entries...)
	if len(r.entries) > r.capacity {
		evicted = append(evicted, r.entries[r.capacity:]...)
		r.entries = r.entries[:r.capacity:r.capacity]
	}

	r.persistLocked(ctx)
	return evicted, true
}

// Rename replaces the title of id. It reports false for an unknown id, a blank title
// or a title equal to the current one.
func (r *SessionRegistry) Rename(ctx context.Context, id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 || r.entries[i].Title == title {
		return false
	}

	r.entries[i].Title = title
	r.persistLocked(ctx)
	return true
}

// Delete removes the summary of id. The message log is not touched.
func (r *SessionRegistry) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return false
	}

	r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
	r.persistLocked(ctx)
	return true
}

// Clear drops every summary and removes the stored history
func (r *SessionRegistry) Clear(ctx context.Context) []domain.ConversationSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.entries
	r.entries = nil
	_ = removeKey(ctx, r.store, domain.KeyChatHistory)
	return removed
}

// List returns a copy, most recent first
func (r *SessionRegistry) List() []domain.ConversationSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.ConversationSummary, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get returns the summary of id
func (r *SessionRegistry) Get(id string) (domain.ConversationSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexLocked(id); i >= 0 {
		return r.entries[i], true
	}
	return domain.ConversationSummary{}, false
}

// Capacity returns the maximum number of summaries kept
func (r *SessionRegistry) Capacity() int {
	return r.capacity
}

func (r *SessionRegistry) indexLocked(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *SessionRegistry) persistLocked(ctx context.Context) {
	entries := r.entries
	if entries == nil {
		entries = []domain.ConversationSummary{}
	}
	_ = persistJSON(ctx, r.store, domain.KeyChatHistory, entries)
}

// Truncate cuts s to max runes and appends suffix when something was cut
func Truncate(s string, max int, suffix string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + suffix
}
