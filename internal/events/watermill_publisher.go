package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// BusConfig selects the transport. With no brokers the bus is an in-process channel.
type BusConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	BufferSize    int64
}

// Bus holds the publisher and subscriber sides of the chosen transport
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	transport  string
	shared     bool
}

// NewBus builds a Kafka bus when brokers are configured, gochannel otherwise
func NewBus(config BusConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	brokers := make([]string, 0, len(config.KafkaBrokers))
	for _, b := range config.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	if len(brokers) == 0 {
		buffer := config.BufferSize
		if buffer <= 0 {
			buffer = 64
		}
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, wmLogger)
		return &Bus{Publisher: ch, Subscriber: ch, transport: "gochannel", shared: true}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         config.ConsumerGroup,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("create kafka subscriber: %w", err)
	}

	return &Bus{Publisher: publisher, Subscriber: subscriber, transport: "kafka"}, nil
}

func (b *Bus) Transport() string {
	return b.transport
}

// Close shuts both sides down. gochannel shares one value for both.
func (b *Bus) Close() error {
	err := b.Publisher.Close()
	if !b.shared {
		if subErr := b.Subscriber.Close(); subErr != nil && err == nil {
			err = subErr
		}
	}
	return err
}

// WatermillEventPublisher marshals envelopes onto a watermill publisher
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{publisher: publisher, logger: logger}
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish event %s to %s: %w", event.Type, topic, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		"topic", topic,
		"event_type", event.Type,
		"event_id", event.ID)
	return nil
}

// Close leaves the underlying publisher to the Bus that owns it
func (p *WatermillEventPublisher) Close() error {
	return nil
}

// DecodeEvent unwraps an envelope and decodes its data into dest
func DecodeEvent(payload []byte, dest interface{}) (*Event, error) {
	var raw struct {
		Event
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	event := raw.Event
	if dest != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, dest); err != nil {
			return nil, fmt.Errorf("decode event %s data: %w", event.Type, err)
		}
		event.Data = dest
	}
	return &event, nil
}
