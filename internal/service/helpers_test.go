package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
	"github.com/Rrens/chat-workspace/internal/repository/memory"
)

// fakeClock advances by one millisecond on every call
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// frozenClock always returns the same instant
func frozenClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%09d", n)
	}
}

// MockProvider mocks llm.Provider
type MockProvider struct {
	mock.Mock
	name   string
	remote bool
}

func (m *MockProvider) Name() string { return m.name }
func (m *MockProvider) Remote() bool { return m.remote }

func (m *MockProvider) ValidateCredential(ctx context.Context, credential string) bool {
	args := m.Called(ctx, credential)
	return args.Bool(0)
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// staticSelector returns fixed providers per mode
type staticSelector struct {
	local  llm.Provider
	remote llm.Provider
}

func (s staticSelector) Select(usingRemote bool) (llm.Provider, error) {
	if usingRemote {
		return s.remote, nil
	}
	return s.local, nil
}

func (s staticSelector) Remote() (llm.Provider, error) {
	return s.remote, nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store      *memory.Store
	clock      *fakeClock
	registry   *SessionRegistry
	messages   *MessageLog
	profiles   *ProfileManager
	controller *ConversationController
	local      *MockProvider
	remote     *MockProvider
	events     *recordingPublisher
}

func newFixture(keepEvictedLogs bool) *fixture {
	f := &fixture{
		store:  memory.NewStore(),
		clock:  newFakeClock(),
		local:  &MockProvider{name: "demo"},
		remote: &MockProvider{name: "gemini", remote: true},
		events: &recordingPublisher{},
	}

	opts := []Option{WithClock(f.clock.Now), WithPublisher(f.events), WithRandomID(sequentialIDs())}
	selector := staticSelector{local: f.local, remote: f.remote}

	f.registry = NewSessionRegistry(f.store, config.HistoryConfig{Capacity: 10, TitleMaxChars: 50}, opts...)
	f.messages = NewMessageLog(f.store, opts...)
	f.profiles = NewProfileManager(f.store, selector, nil, opts...)
	f.controller = NewConversationController(f.registry, f.messages, f.profiles, selector, keepEvictedLogs, opts...)
	return f
}
