package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", `{"a":1}`))
	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found)
	assert.Equal(t, 1, s.Writes())
}

func TestStore_Fail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Fail(ErrUnavailable)

	assert.ErrorIs(t, s.Set(ctx, "k", "v"), ErrUnavailable)
	assert.ErrorIs(t, s.Ping(ctx), ErrUnavailable)

	s.Fail(nil)
	assert.NoError(t, s.Set(ctx, "k", "v"))
}
