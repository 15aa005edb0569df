package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-workspace/internal/domain"
)

func TestJoinParts(t *testing.T) {
	reply, err := JoinParts("  Hello", ", ", "world!  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", reply)

	_, err = JoinParts(" ", "\n")
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = JoinParts()
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("gemini", nil))

	base := errors.New("status 401")
	err := Wrap("gemini", base)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "gemini", perr.Provider)
	assert.ErrorIs(t, err, base)

	// already wrapped errors keep the original provider
	assert.Same(t, err, Wrap("openai", err))
}
