package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
	"github.com/Rrens/chat-workspace/internal/security"
)

// FallbackReply is appended when the provider fails
const FallbackReply = "I apologize, but I encountered an error while processing your request. This is a demo interface showing UI functionality."

const maxTitleInput = 100

// ProviderSelector picks the provider for the profile's current mode
type ProviderSelector interface {
	Select(usingRemote bool) (llm.Provider, error)
}

// ProfileSource is the part of ProfileManager the controller needs
type ProfileSource interface {
	Profile() domain.Profile
	DisableRemote(ctx context.Context)
}

// ConversationController ties the registry, the message log and the provider together.
// At most one completion is outstanding at a time.
type ConversationController struct {
	mu        sync.Mutex
	registry  *SessionRegistry
	messages  *MessageLog
	profiles  ProfileSource
	providers ProviderSelector
	publisher EventPublisher
	clock     Clock

	keepEvictedLogs bool

	active    string
	hasActive bool
	inFlight  bool
}

// NewConversationController creates a controller with no active conversation
func NewConversationController(
	registry *SessionRegistry,
	messages *MessageLog,
	profiles ProfileSource,
	providers ProviderSelector,
	keepEvictedLogs bool,
	opts ...Option,
) *ConversationController {
	o := buildOptions(opts)
	return &ConversationController{
		registry:        registry,
		messages:        messages,
		profiles:        profiles,
		providers:       providers,
		publisher:       o.publisher,
		clock:           o.clock,
		keepEvictedLogs: keepEvictedLogs,
	}
}

// StartNew makes a fresh, empty conversation active
func (c *ConversationController) StartNew(ctx context.Context) string {
	c.mu.Lock()
	id := c.startNewLocked()
	c.mu.Unlock()

	c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: id, Messages: []domain.Message{}})
	return id
}

// Send appends text as a user message, asks the provider for a reply and appends it.
// Blank text and a send while another is outstanding are rejected without effect.
// Provider failures never reach the caller: the fallback reply is appended instead.
func (c *ConversationController) Send(ctx context.Context, text string) (*domain.Exchange, error) {
	text = security.SanitizeText(text, 0)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, domain.ErrSendInFlight
	}

	started := !c.hasActive
	if started {
		c.startNewLocked()
	}
	id := c.active

	userMsg := c.messages.Append(ctx, id, domain.SenderUser, text)
	evicted, inserted := c.registry.RecordFirstMessage(ctx, id, text)
	c.dropLogsLocked(ctx, evicted)

	profile := c.profiles.Profile()
	c.inFlight = true
	c.mu.Unlock()

	if started {
		c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: id, Messages: []domain.Message{}})
	}
	c.emit(ctx, domain.EventMessageAppended, domain.MessageAppendedPayload{ConversationID: id, Message: userMsg})
	if inserted {
		c.emit(ctx, domain.EventConversationsChanged, c.registry.List())
	}
	c.emit(ctx, domain.EventTypingChanged, domain.TypingChangedPayload{ConversationID: id, Typing: true})

	reply, degraded := c.complete(ctx, text, profile)

	c.mu.Lock()
	replyMsg := c.messages.Append(ctx, id, domain.SenderAssistant, reply)
	c.inFlight = false
	c.mu.Unlock()

	c.emit(ctx, domain.EventTypingChanged, domain.TypingChangedPayload{ConversationID: id, Typing: false})
	c.emit(ctx, domain.EventMessageAppended, domain.MessageAppendedPayload{ConversationID: id, Message: replyMsg})

	return &domain.Exchange{
		ConversationID: id,
		UserMessage:    userMsg,
		Reply:          replyMsg,
		Degraded:       degraded,
	}, nil
}

// complete calls the provider outside the lock. The call is detached from ctx so a
// disconnected client does not abort it.
func (c *ConversationController) complete(ctx context.Context, text string, profile domain.Profile) (string, bool) {
	provider, err := c.providers.Select(profile.UsingRemoteProvider)
	if err == nil {
		var reply string
		reply, err = provider.Complete(context.WithoutCancel(ctx), llm.Request{
			Prompt:     text,
			Credential: profile.Credential,
			Profile:    profile,
		})
		if err == nil {
			return reply, false
		}
	}

	log.Warn().Err(err).Bool("remote", profile.UsingRemoteProvider).Msg("completion failed, using fallback reply")
	if profile.UsingRemoteProvider {
		c.profiles.DisableRemote(ctx)
	}
	return FallbackReply, true
}

// Open makes id active and returns its messages. An unknown id starts a new
// conversation instead and the view is flagged as a fallback.
func (c *ConversationController) Open(ctx context.Context, id string) domain.ConversationView {
	c.mu.Lock()
	summary, ok := c.registry.Get(id)
	if !ok {
		newID := c.startNewLocked()
		c.mu.Unlock()

		log.Debug().Str("conversation_id", id).Msg("conversation not found, starting a new one")
		c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: newID, Messages: []domain.Message{}})
		return domain.ConversationView{ID: newID, Messages: []domain.Message{}, Fallback: true}
	}

	c.active, c.hasActive = id, true
	msgs := c.messages.Get(id)
	c.mu.Unlock()

	c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: id, Messages: msgs})
	return domain.ConversationView{ID: id, Title: summary.Title, Messages: msgs}
}

// Rename changes a conversation title
func (c *ConversationController) Rename(ctx context.Context, id, title string) bool {
	if !c.registry.Rename(ctx, id, security.SanitizeText(title, maxTitleInput)) {
		return false
	}
	c.emit(ctx, domain.EventConversationsChanged, c.registry.List())
	return true
}

// Delete removes a conversation and its messages. Deleting the active one starts a new one.
// An active conversation with no messages yet is not in the registry, so Delete reports false and the pointer stays.
func (c *ConversationController) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	if !c.registry.Delete(ctx, id) {
		c.mu.Unlock()
		return false
	}
	c.messages.Clear(ctx, id)

	var newID string
	wasActive := c.hasActive && c.active == id
	if wasActive {
		newID = c.startNewLocked()
	}
	c.mu.Unlock()

	c.emit(ctx, domain.EventConversationsChanged, c.registry.List())
	if wasActive {
		c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: newID, Messages: []domain.Message{}})
	}
	return true
}

// ClearAll empties the history and starts a new conversation
func (c *ConversationController) ClearAll(ctx context.Context) string {
	c.mu.Lock()
	removed := c.registry.Clear(ctx)
	c.dropLogsLocked(ctx, removed)
	id := c.startNewLocked()
	c.mu.Unlock()

	c.emit(ctx, domain.EventConversationsChanged, []domain.ConversationSummary{})
	c.emit(ctx, domain.EventActiveChanged, domain.ActiveChangedPayload{ConversationID: id, Messages: []domain.Message{}})
	return id
}

// TypingState reports whether a completion is outstanding
func (c *ConversationController) TypingState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Active returns the active conversation id, if any
func (c *ConversationController) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.hasActive
}

// ActiveView returns the active conversation with its messages
func (c *ConversationController) ActiveView() (domain.ConversationView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasActive {
		return domain.ConversationView{}, false
	}
	summary, _ := c.registry.Get(c.active)
	return domain.ConversationView{
		ID:       c.active,
		Title:    summary.Title,
		Messages: c.messages.Get(c.active),
	}, true
}

// Conversations lists the registry, most recent first
func (c *ConversationController) Conversations() []domain.ConversationSummary {
	return c.registry.List()
}

func (c *ConversationController) startNewLocked() string {
	c.active = c.registry.CreateConversation()
	c.hasActive = true
	return c.active
}

func (c *ConversationController) dropLogsLocked(ctx context.Context, evicted []domain.ConversationSummary) {
	if c.keepEvictedLogs || len(evicted) == 0 {
		return
	}
	ids := make([]string, len(evicted))
	for i, e := range evicted {
		ids[i] = e.ID
	}
	c.messages.Clear(ctx, ids...)
	log.Debug().Strs("conversation_ids", ids).Msg("evicted conversations dropped")
}

func (c *ConversationController) emit(ctx context.Context, typ domain.EventType, payload any) {
	publish(ctx, c.publisher, c.clock, typ, payload)
}
