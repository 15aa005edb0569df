package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned by a store that has been made to fail
var ErrUnavailable = errors.New("store unavailable")

// Store is an in-process implementation of domain.KVStore
type Store struct {
	mu      sync.RWMutex
	data    map[string]string
	failErr error
	writes  int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failErr != nil {
		return "", false, s.failErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	s.data[key] = value
	s.writes++
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failErr
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Writes returns the number of successful Set calls
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
