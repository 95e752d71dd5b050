package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
)

// Transport pairs the publisher and subscriber of one message bus.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewTransport builds the bus selected by cfg.Driver: an in-process go
// channel or kafka.
func NewTransport(cfg config.EventsConfig, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger.With("component", "events"))

	switch cfg.Driver {
	case "", "memory":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Transport{Publisher: ch, Subscriber: ch}, nil

	case "kafka":
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:               cfg.Brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			ConsumerGroup:         cfg.ConsumerGroup,
			OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		}, wmLogger)
		if err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
		}
		return &Transport{Publisher: pub, Subscriber: sub}, nil
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
}

func (t *Transport) Close() error {
	// gochannel is both ends; closing twice is a no-op there
	return errors.Join(t.Publisher.Close(), t.Subscriber.Close())
}
