package transports_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drblury/fakeflow/transport"
	_ "github.com/drblury/fakeflow/transport/transports"
)

func TestAllTransportsRegistered(t *testing.T) {
	for _, name := range []string{
		"aws", "aws-sqs", "channel", "http", "io", "kafka", "nats",
		"nats-jetstream", "postgres", "rabbitmq", "sqlite",
	} {
		assert.True(t, transport.DefaultRegistry.Has(name), name)
	}
	for _, alias := range []string{"gochannel", "file", "amqp", "jetstream", "postgresql", "aws-sns", "sqs"} {
		assert.True(t, transport.DefaultRegistry.Has(alias), alias)
	}
}
