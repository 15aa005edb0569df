package repository

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/repository/memory"
	"github.com/Rrens/chat-workspace/internal/repository/mongo"
	"github.com/Rrens/chat-workspace/internal/repository/mysql"
	"github.com/Rrens/chat-workspace/internal/repository/postgres"
	"github.com/Rrens/chat-workspace/internal/repository/redis"
	"github.com/Rrens/chat-workspace/internal/repository/sqlite"
	"github.com/rs/zerolog/log"
)

// Backend is an opened key-value store together with the resources it holds
type Backend struct {
	Store  domain.KVStore
	Closer io.Closer
	// Redis is set when the backend is Redis, so the rate limiter can share it
	Redis *redis.Client
}

// Close releases the backend's resources
func (b *Backend) Close() error {
	if b.Closer == nil {
		return nil
	}
	return b.Closer.Close()
}

// OpenerFunc opens a backend from configuration
type OpenerFunc func(ctx context.Context, cfg *config.Config) (*Backend, error)

// Registry maps store driver names to openers
type Registry struct {
	openers map[string]OpenerFunc
	mu      sync.RWMutex
}

// NewRegistry creates a registry with every built-in driver registered
func NewRegistry() *Registry {
	r := &Registry{openers: make(map[string]OpenerFunc)}
	r.Register("memory", openMemory)
	r.Register("sqlite", openSQLite)
	r.Register("postgres", openPostgres)
	r.Register("mysql", openMySQL)
	r.Register("redis", openRedis)
	r.Register("mongo", openMongo)
	return r
}

// Register adds or replaces a driver
func (r *Registry) Register(driver string, opener OpenerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[driver] = opener
}

// Drivers returns the registered driver names, sorted
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.openers))
	for name := range r.openers {
		drivers = append(drivers, name)
	}
	sort.Strings(drivers)
	return drivers
}

// Open opens the backend selected by cfg.Store.Driver
func (r *Registry) Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	r.mu.RLock()
	opener, ok := r.openers[cfg.Store.Driver]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}

	backend, err := opener(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	log.Info().Str("driver", cfg.Store.Driver).Str("namespace", cfg.Store.Namespace).Msg("Opened key-value store")
	return backend, nil
}

func openMemory(ctx context.Context, cfg *config.Config) (*Backend, error) {
	return &Backend{Store: memory.NewStore()}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Backend, error) {
	store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.Store.Namespace)
	if err != nil {
		return nil, err
	}
	return &Backend{Store: store, Closer: store}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Store:  postgres.NewStore(db, cfg.Store.Namespace),
		Closer: closerFunc(func() error { db.Close(); return nil }),
	}, nil
}

func openMySQL(ctx context.Context, cfg *config.Config) (*Backend, error) {
	store, err := mysql.Open(ctx, cfg.MySQL, cfg.Store.Namespace)
	if err != nil {
		return nil, err
	}
	return &Backend{Store: store, Closer: store}, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (*Backend, error) {
	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Store:  redis.NewStore(client, cfg.Store.Namespace),
		Closer: client,
		Redis:  client,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Backend, error) {
	store, err := mongo.Open(ctx, cfg.Mongo, cfg.Store.Namespace)
	if err != nil {
		return nil, err
	}
	return &Backend{Store: store, Closer: store}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
