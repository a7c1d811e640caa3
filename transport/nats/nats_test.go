package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/fakeflow/transport"
	"github.com/drblury/fakeflow/transport/transporttest"
)

func TestRegistered(t *testing.T) {
	assert.True(t, transport.DefaultRegistry.Has(TransportName))
	assert.Equal(t, transport.NATSCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	originalFactory := PublisherFactory
	defer func() { PublisherFactory = originalFactory }()

	t.Run("core publisher", func(t *testing.T) {
		pub := transporttest.NewPublisher()
		var got nats.PublisherConfig
		PublisherFactory = func(cfg nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			got = cfg
			return pub, nil
		}

		tr, err := Build(context.Background(), &transporttest.Config{NATSURL: "nats://localhost:4222"}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Same(t, pub, tr.Publisher)
		assert.Equal(t, "nats://localhost:4222", got.URL)
		assert.True(t, got.JetStream.Disabled)
		assert.NotNil(t, got.Marshaler)
	})

	t.Run("requires URL", func(t *testing.T) {
		_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
		assert.ErrorContains(t, err, "URL is required")
	})

	t.Run("factory error", func(t *testing.T) {
		boom := errors.New("no servers")
		PublisherFactory = func(nats.PublisherConfig, watermill.LoggerAdapter) (message.Publisher, error) {
			return nil, boom
		}
		_, err := Build(context.Background(), &transporttest.Config{NATSURL: "nats://x"}, watermill.NopLogger{})
		assert.ErrorIs(t, err, boom)
	})
}
