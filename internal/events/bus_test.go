package events_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type    domain.EventType            `json:"type"`
	Payload domain.TypingChangedPayload `json:"payload"`
}

func next(t *testing.T, ch <-chan json.RawMessage) received {
	t.Helper()
	select {
	case raw, ok := <-ch:
		require.True(t, ok, "subscription closed")
		var got received
		require.NoError(t, json.Unmarshal(raw, &got))
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return received{}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := events.NewBus(events.WithTopic("test.events"))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	// Publish waits for the subscriber to take the event
	go bus.Publish(ctx, domain.Event{
		Type:    domain.EventTypingChanged,
		Payload: domain.TypingChangedPayload{ConversationID: "chat_1", Typing: true},
	})

	got := next(t, ch)
	assert.Equal(t, domain.EventTypingChanged, got.Type)
	assert.Equal(t, "chat_1", got.Payload.ConversationID)
	assert.True(t, got.Payload.Typing)
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	const n = 300
	go func() {
		for i := 0; i < n; i++ {
			bus.Publish(ctx, domain.Event{
				Type:    domain.EventTypingChanged,
				Payload: domain.TypingChangedPayload{ConversationID: strconv.Itoa(i), Typing: i%2 == 0},
			})
		}
	}()

	for i := 0; i < n; i++ {
		got := next(t, ch)
		require.Equal(t, strconv.Itoa(i), got.Payload.ConversationID, "event %d out of order", i)
		assert.Equal(t, i%2 == 0, got.Payload.Typing)
	}
}

func TestBus_PublishAfterSubscriberLeaves(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), domain.Event{Type: domain.EventProfileReady})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a cancelled subscriber")
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), domain.Event{Type: domain.EventProfileReady})
	})
}
