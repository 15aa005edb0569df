package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when operating on an unknown conversation id
	ErrNotFound = errors.New("conversation not found")
	// ErrEmptyMessage is returned when send is called with blank text
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight is returned when a completion is already outstanding
	ErrSendInFlight = errors.New("a completion request is already in flight")
	// ErrProfileNotReady is returned when chat operations run before setup
	ErrProfileNotReady = errors.New("profile has not been set up")
	// ErrProfileExists is returned by setup once a profile exists; changes go through update
	ErrProfileExists = errors.New("profile already exists")
)

// ValidationError reports bad profile input. It blocks the operation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ProviderError wraps a completion provider failure
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a store failure. In-memory state stays authoritative.
type PersistenceError struct {
	Key string
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
