package transport

// Capabilities describes what a sink transport guarantees for published
// records.
type Capabilities struct {
	// Name is the human-readable name of the transport.
	Name string

	// Durable indicates published records survive a restart of the process.
	Durable bool

	// SupportsOrdering indicates records are stored or delivered in publish
	// order (per partition where partitioning applies).
	SupportsOrdering bool

	// SupportsTracing indicates the transport propagates tracing headers.
	SupportsTracing bool

	// SupportsBatching indicates one Publish call may carry many messages
	// efficiently.
	SupportsBatching bool

	// SupportsPartitioning indicates records are spread across partitions.
	SupportsPartitioning bool

	// SupportsSubscribe indicates the transport hands records back in-process.
	SupportsSubscribe bool

	// MaxMessageSize is the maximum payload size in bytes (0 = unlimited/unknown).
	MaxMessageSize int64
}

// FitsPayload reports whether a payload of size bytes can be published.
func (c Capabilities) FitsPayload(size int) bool {
	return c.MaxMessageSize <= 0 || int64(size) <= c.MaxMessageSize
}

// Predefined capability sets for the built-in transports.
var (
	// ChannelCapabilities for the in-memory Go channel transport.
	ChannelCapabilities = Capabilities{
		Name:              "channel",
		SupportsOrdering:  true,
		SupportsSubscribe: true,
	}

	// IOCapabilities for the append-only file transport.
	IOCapabilities = Capabilities{
		Name:             "io",
		Durable:          true,
		SupportsOrdering: true,
	}

	// KafkaCapabilities for Apache Kafka.
	KafkaCapabilities = Capabilities{
		Name:                 "kafka",
		Durable:              true,
		SupportsOrdering:     true,
		SupportsTracing:      true,
		SupportsBatching:     true,
		SupportsPartitioning: true,
		MaxMessageSize:       1048576, // Default 1MB
	}

	// RabbitMQCapabilities for RabbitMQ/AMQP.
	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		Durable:          true,
		SupportsOrdering: true,
		SupportsTracing:  true,
	}

	// NATSCapabilities for NATS Core.
	NATSCapabilities = Capabilities{
		Name:            "nats",
		SupportsTracing: true,
		MaxMessageSize:  1048576, // Default 1MB
	}

	// NATSJetStreamCapabilities for NATS JetStream.
	NATSJetStreamCapabilities = Capabilities{
		Name:             "nats-jetstream",
		Durable:          true,
		SupportsOrdering: true,
		SupportsTracing:  true,
		SupportsBatching: true,
		MaxMessageSize:   1048576, // Default 1MB
	}

	// HTTPCapabilities for the HTTP POST transport.
	HTTPCapabilities = Capabilities{
		Name:            "http",
		SupportsTracing: true,
	}

	// AWSCapabilities for AWS SNS.
	AWSCapabilities = Capabilities{
		Name:             "aws",
		Durable:          true,
		SupportsTracing:  true,
		SupportsBatching: true,
		MaxMessageSize:   262144, // 256KB
	}

	// AWSSQSCapabilities for publishing straight to an SQS queue.
	AWSSQSCapabilities = Capabilities{
		Name:             "aws-sqs",
		Durable:          true,
		SupportsTracing:  true,
		SupportsBatching: true,
		MaxMessageSize:   262144, // 256KB
	}

	// SQLiteCapabilities for the SQLite record store.
	SQLiteCapabilities = Capabilities{
		Name:             "sqlite",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
	}

	// PostgresCapabilities for the PostgreSQL record store.
	PostgresCapabilities = Capabilities{
		Name:             "postgres",
		Durable:          true,
		SupportsOrdering: true,
		SupportsBatching: true,
	}
)

// GetCapabilities returns the capabilities for a transport by name from the
// default registry. Unknown transports get a Capabilities carrying only the name.
func GetCapabilities(transportName string) Capabilities {
	return DefaultRegistry.GetCapabilities(transportName)
}
