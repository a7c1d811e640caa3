package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_FitsPayload(t *testing.T) {
	assert.True(t, Capabilities{}.FitsPayload(10<<20), "zero limit means unlimited")
	assert.True(t, AWSCapabilities.FitsPayload(262144))
	assert.False(t, AWSCapabilities.FitsPayload(262145))
	assert.True(t, KafkaCapabilities.FitsPayload(1024))
}

func TestPredefinedCapabilities(t *testing.T) {
	all := []Capabilities{
		ChannelCapabilities, IOCapabilities, KafkaCapabilities, RabbitMQCapabilities,
		NATSCapabilities, NATSJetStreamCapabilities, HTTPCapabilities, AWSCapabilities, AWSSQSCapabilities,
		SQLiteCapabilities, PostgresCapabilities,
	}
	names := map[string]bool{}
	for _, caps := range all {
		assert.NotEmpty(t, caps.Name)
		assert.False(t, names[caps.Name], "duplicate capability name %s", caps.Name)
		names[caps.Name] = true
	}

	assert.True(t, ChannelCapabilities.SupportsSubscribe)
	assert.False(t, ChannelCapabilities.Durable)
	assert.True(t, KafkaCapabilities.SupportsPartitioning)
	assert.True(t, SQLiteCapabilities.Durable)
	assert.True(t, PostgresCapabilities.SupportsOrdering)
	assert.False(t, NATSCapabilities.Durable)
	assert.True(t, NATSJetStreamCapabilities.Durable)
}

func TestGetCapabilities_Unknown(t *testing.T) {
	caps := GetCapabilities("definitely-not-registered")
	assert.Equal(t, Capabilities{Name: "definitely-not-registered"}, caps)
}
