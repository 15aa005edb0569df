package logging

import (
	"path/filepath"
	"testing"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_LevelFallback(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	closer, err := Setup(config.LoggingConfig{Level: "not-a-level"}, false)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	closer, err = Setup(config.LoggingConfig{Level: "DEBUG", Format: "json"}, true)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_RotatingFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	file := filepath.Join(t.TempDir(), "logs", "chat.log")
	closer, err := Setup(config.LoggingConfig{Level: "info", File: file}, true)
	require.NoError(t, err)
	defer closer.Close()

	assert.DirExists(t, filepath.Dir(file))
}
