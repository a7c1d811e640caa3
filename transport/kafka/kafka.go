// Package kafka provides the Kafka sink transport.
package kafka

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/fakeflow/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "kafka"

// DefaultClientID identifies fakeflow to the brokers when none is configured.
const DefaultClientID = "fakeflow"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.KafkaCapabilities)
}

// PublisherConfig returns the publisher configuration for the given brokers.
// Records are partitioned by message UUID.
func PublisherConfig(brokers []string, clientID string) kafka.PublisherConfig {
	saramaConfig := kafka.DefaultSaramaSyncPublisherConfig()
	if clientID == "" {
		clientID = DefaultClientID
	}
	saramaConfig.ClientID = clientID

	return kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: saramaConfig,
	}
}

// Build creates a new Kafka transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	brokers := cfg.GetKafkaBrokers()
	if len(brokers) == 0 {
		return transport.Transport{}, fmt.Errorf("kafka: at least one broker is required")
	}

	publisher, err := PublisherFactory(PublisherConfig(brokers, cfg.GetKafkaClientID()), logger)
	if err != nil {
		return transport.Transport{}, fmt.Errorf("kafka: create publisher: %w", err)
	}
	return transport.Transport{Publisher: publisher}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.KafkaCapabilities
}
