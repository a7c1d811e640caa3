// Package channel provides the in-memory sink transport. Records published to
// it can be read back through the returned Subscriber, which makes it the
// default for local runs and tests.
package channel

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/drblury/fakeflow/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "channel"

// DefaultBufferSize is the per-subscriber output buffer. A generator running
// without a reader must not block on the first record.
const DefaultBufferSize = 1024

// Factory allows overriding the channel creation for testing.
var Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber) {
	pubSub := gochannel.NewGoChannel(cfg, logger)
	return pubSub, pubSub
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.ChannelCapabilities)
	transport.Alias("gochannel", TransportName)
}

// Build creates a new Go channel transport. Late subscribers still receive
// everything published before they subscribed.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	pub, sub := Factory(gochannel.Config{
		OutputChannelBuffer:            DefaultBufferSize,
		Persistent:                     true,
		BlockPublishUntilSubscriberAck: false,
	}, logger)
	return transport.Transport{
		Publisher:  pub,
		Subscriber: sub,
	}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.ChannelCapabilities
}
