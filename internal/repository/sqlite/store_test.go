package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.KVStore = (*sqlite.Store)(nil)

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "chat.db")

	store, err := sqlite.Open(ctx, path, "")
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get(ctx, domain.KeyUserName)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, domain.KeyUserName, "Ada"))
	require.NoError(t, store.Set(ctx, domain.KeyUserName, "Ada Lovelace"))

	v, found, err := store.Get(ctx, domain.KeyUserName)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada Lovelace", v)

	require.NoError(t, store.Remove(ctx, domain.KeyUserName))
	_, found, err = store.Get(ctx, domain.KeyUserName)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat.db")

	a, err := sqlite.Open(ctx, path, "a")
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, domain.KeyChatHistory, `[{"id":"chat_1"}]`))
	require.NoError(t, a.Close())

	b, err := sqlite.Open(ctx, path, "b")
	require.NoError(t, err)
	defer b.Close()

	_, found, err := b.Get(ctx, domain.KeyChatHistory)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat.db")

	s1, err := sqlite.Open(ctx, path, "")
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, domain.KeyChatMessages, `{}`))
	require.NoError(t, s1.Close())

	s2, err := sqlite.Open(ctx, path, "")
	require.NoError(t, err)
	defer s2.Close()

	v, found, err := s2.Get(ctx, domain.KeyChatMessages)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{}`, v)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "", "")
	assert.Error(t, err)
}
