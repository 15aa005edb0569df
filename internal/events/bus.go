package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/logging"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

const DefaultTopic = "chat.events"

// Bus fans state-change events out to any number of subscribers.
// Publishing with no subscribers drops the event. Publish returns once every
// subscriber has taken the event, so each subscriber sees events in publish order.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

type Option func(*options)

type options struct {
	topic      string
	bufferSize int64
	logger     watermill.LoggerAdapter
}

func WithTopic(topic string) Option {
	return func(o *options) {
		if topic != "" {
			o.topic = topic
		}
	}
}

func WithBufferSize(size int64) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithVerbose routes watermill's own logs through zerolog
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		if verbose {
			o.logger = logging.NewWatermillAdapter(log.Logger)
		}
	}
}

// NewBus creates an in-process event bus
func NewBus(opts ...Option) *Bus {
	o := &options{
		topic:      DefaultTopic,
		bufferSize: 64,
		logger:     watermill.NopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            o.bufferSize,
			BlockPublishUntilSubscriberAck: true,
		}, o.logger),
		topic: o.topic,
	}
}

// Publish serializes the event and publishes it. Failures are logged only.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to marshal event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(event.Type))

	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		log.Warn().Err(err).Str("topic", b.topic).Msg("Failed to publish event")
		return
	}

	log.Trace().Str("topic", b.topic).Str("event_type", string(event.Type)).Msg("Published event")
}

// Subscribe returns a channel of raw JSON events that is closed when ctx is done
func (b *Bus) Subscribe(ctx context.Context) (<-chan json.RawMessage, error) {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.topic, err)
	}

	out := make(chan json.RawMessage)
	go func() {
		defer close(out)
		for msg := range messages {
			select {
			case out <- json.RawMessage(msg.Payload):
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()

	return out, nil
}

// Close stops the bus and closes all subscriptions
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
