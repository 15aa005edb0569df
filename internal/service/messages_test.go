package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/repository/memory"
)

func newMessageLog(store domain.KVStore) *MessageLog {
	return NewMessageLog(store, WithClock(newFakeClock().Now), WithRandomID(sequentialIDs()))
}

func TestMessageLog_AppendOrder(t *testing.T) {
	ctx := context.Background()
	l := newMessageLog(memory.NewStore())

	l.Append(ctx, "chat_1", domain.SenderUser, "one")
	l.Append(ctx, "chat_1", domain.SenderAssistant, "two")
	l.Append(ctx, "chat_2", domain.SenderUser, "other")
	l.Append(ctx, "chat_1", domain.SenderUser, "three")

	msgs := l.Get("chat_1")
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	assert.Equal(t, domain.SenderAssistant, msgs[1].Sender)
	assert.Regexp(t, `^msg_\d+_\w{9}$`, msgs[0].ID)
	assert.Less(t, int64(msgs[0].Timestamp), int64(msgs[2].Timestamp))
}

func TestMessageLog_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	l := newMessageLog(memory.NewStore())
	l.Append(ctx, "chat_1", domain.SenderUser, "original")

	msgs := l.Get("chat_1")
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", l.Get("chat_1")[0].Content)
	assert.Empty(t, l.Get("chat_missing"))
	assert.NotNil(t, l.Get("chat_missing"))
}

func TestMessageLog_PersistRoundTripIsByteStable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := newMessageLog(store)
	l.Append(ctx, "chat_1", domain.SenderUser, "hello")
	l.Append(ctx, "chat_1", domain.SenderAssistant, "hi there")
	l.Append(ctx, "chat_2", domain.SenderUser, "second conversation")

	first, _, err := store.Get(ctx, domain.KeyChatMessages)
	require.NoError(t, err)

	reloaded := newMessageLog(store)
	reloaded.Load(ctx)
	assert.Equal(t, l.Get("chat_1"), reloaded.Get("chat_1"))
	assert.Equal(t, l.Get("chat_2"), reloaded.Get("chat_2"))

	reloaded.persistLocked(ctx)
	second, _, _ := store.Get(ctx, domain.KeyChatMessages)
	assert.Equal(t, first, second)
}

func TestMessageLog_LoadSkipsUnknownSender(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyChatMessages,
		`{"chat_1":[{"id":"msg_1_a","sender":"user","content":"ok","timestamp":1},{"id":"msg_2_b","sender":"robot","content":"bad","timestamp":2}]}`))

	l := newMessageLog(store)
	l.Load(ctx)

	msgs := l.Get("chat_1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "ok", msgs[0].Content)
}

func TestMessageLog_Clear(t *testing.T) {
	ctx := context.Background()
	l := newMessageLog(memory.NewStore())
	l.Append(ctx, "chat_1", domain.SenderUser, "a")
	l.Append(ctx, "chat_2", domain.SenderUser, "b")

	l.Clear(ctx, "chat_1", "chat_unknown")

	assert.Empty(t, l.Get("chat_1"))
	assert.Len(t, l.Get("chat_2"), 1)
	assert.Equal(t, 1, l.Conversations())
}

func TestMessageLog_PersistenceFailureTolerated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := newMessageLog(store)
	l.Append(ctx, "chat_1", domain.SenderUser, "before outage")

	store.Fail(memory.ErrUnavailable)
	msg := l.Append(ctx, "chat_1", domain.SenderUser, "during outage")
	assert.Equal(t, "during outage", msg.Content)
	assert.Len(t, l.Get("chat_1"), 2)

	store.Fail(nil)
	l.Append(ctx, "chat_1", domain.SenderAssistant, "after outage")

	reloaded := newMessageLog(store)
	reloaded.Load(ctx)
	assert.Len(t, reloaded.Get("chat_1"), 3)
}
