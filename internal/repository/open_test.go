package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Drivers(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"memory", "mongo", "mysql", "postgres", "redis", "sqlite"}, r.Drivers())
}

func TestRegistry_OpenMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory"}}

	backend, err := NewRegistry().Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &memory.Store{}, backend.Store)
	assert.Nil(t, backend.Redis)
}

func TestRegistry_OpenSQLite(t *testing.T) {
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite"},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "chat.db")},
	}

	backend, err := NewRegistry().Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Store.Set(context.Background(), "k", "v"))
}

func TestRegistry_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "etcd"}}

	_, err := NewRegistry().Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported store driver")
}
