package domain

import "time"

// EventType identifies a state-change notification
type EventType string

const (
	EventProfileReady         EventType = "profile.ready"
	EventMessageAppended      EventType = "message.appended"
	EventConversationsChanged EventType = "conversations.changed"
	EventActiveChanged        EventType = "active.changed"
	EventTypingChanged        EventType = "typing.changed"
)

// Event is emitted to the presentation layer after a state change
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// MessageAppendedPayload accompanies EventMessageAppended
type MessageAppendedPayload struct {
	ConversationID string  `json:"conversation_id"`
	Message        Message `json:"message"`
}

// ActiveChangedPayload accompanies EventActiveChanged
type ActiveChangedPayload struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

// TypingChangedPayload accompanies EventTypingChanged
type TypingChangedPayload struct {
	ConversationID string `json:"conversation_id"`
	Typing         bool   `json:"typing"`
}
