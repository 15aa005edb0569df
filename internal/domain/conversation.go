package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether the sender is one of the known values
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Timestamp is a point in time serialized as unix milliseconds
type Timestamp int64

// NewTimestamp converts t to millisecond precision
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time returns the timestamp as a time.Time
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts))
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(ts), 10)), nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	// Older payloads may carry fractional milliseconds
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*ts = Timestamp(int64(f))
	return nil
}

// ConversationSummary is one entry of the session registry
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp Timestamp `json:"timestamp"`
}

// Message is a single immutable entry in a conversation log
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// ConversationView is what a client needs to display a conversation
type ConversationView struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages"`
	// Fallback is set when the requested conversation did not exist and a new one was started
	Fallback bool `json:"fallback,omitempty"`
}

// Exchange is the outcome of one send: the user message and the reply appended for it
type Exchange struct {
	ConversationID string  `json:"conversation_id"`
	UserMessage    Message `json:"user_message"`
	Reply          Message `json:"reply"`
	Degraded       bool    `json:"degraded,omitempty"`
}
