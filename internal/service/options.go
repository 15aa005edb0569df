package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/domain"
)

// Clock returns the current time
type Clock func() time.Time

// EventPublisher receives state-change notifications
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) {}

// Option configures the services of this package
type Option func(*options)

type options struct {
	clock     Clock
	publisher EventPublisher
	randomID  func() string
}

func defaultOptions() options {
	return options{
		clock:     time.Now,
		publisher: nopPublisher{},
		randomID:  randomSuffix,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithPublisher sets where events are sent
func WithPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithRandomID overrides the random part of message ids
func WithRandomID(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.randomID = fn
		}
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func messageID(ms int64, suffix string) string {
	return "msg_" + strconv.FormatInt(ms, 10) + "_" + suffix
}

func conversationID(ms int64) string {
	return "chat_" + strconv.FormatInt(ms, 10)
}

// persistJSON writes value under key. Failures are logged and returned, never fatal.
func persistJSON(ctx context.Context, store domain.KVStore, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return logPersistence(&domain.PersistenceError{Key: key, Op: "encode", Err: err})
	}
	return persistString(ctx, store, key, string(data))
}

func persistString(ctx context.Context, store domain.KVStore, key, value string) error {
	if err := store.Set(context.WithoutCancel(ctx), key, value); err != nil {
		return logPersistence(&domain.PersistenceError{Key: key, Op: "set", Err: err})
	}
	return nil
}

func removeKey(ctx context.Context, store domain.KVStore, key string) error {
	if err := store.Remove(context.WithoutCancel(ctx), key); err != nil {
		return logPersistence(&domain.PersistenceError{Key: key, Op: "remove", Err: err})
	}
	return nil
}

func logPersistence(err *domain.PersistenceError) error {
	log.Warn().Err(err.Err).Str("key", err.Key).Str("op", err.Op).Msg("failed to persist state")
	return err
}

func publish(ctx context.Context, p EventPublisher, clock Clock, typ domain.EventType, payload any) {
	p.Publish(ctx, domain.Event{Type: typ, Timestamp: clock(), Payload: payload})
}
