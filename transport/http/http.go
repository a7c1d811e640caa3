// Package http provides the HTTP sink transport: every record is POSTed to
// the publisher URL with the topic appended to the path.
package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/fakeflow/internal/runtime/metadata"
	"github.com/drblury/fakeflow/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "http"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(config http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return http.NewPublisher(config, logger)
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.HTTPCapabilities)
}

// MarshalMessageFunc builds the request for a record published to topic.
// The record's content type metadata becomes the Content-Type header.
func MarshalMessageFunc(baseURL string) http.MarshalMessageFunc {
	base := strings.TrimSuffix(baseURL, "/") + "/"
	return func(topic string, msg *message.Message) (*nethttp.Request, error) {
		req, err := http.DefaultMarshalMessageFunc(base+topic, msg)
		if err != nil {
			return nil, err
		}
		if ct := msg.Metadata.Get(metadata.KeyContentType); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		return req, nil
	}
}

// Build creates a new HTTP transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	publisherURL := cfg.GetHTTPPublisherURL()
	if publisherURL == "" {
		return transport.Transport{}, fmt.Errorf("http: publisher URL is required")
	}

	publisher, err := PublisherFactory(
		http.PublisherConfig{
			MarshalMessageFunc: MarshalMessageFunc(publisherURL),
		},
		logger,
	)
	if err != nil {
		return transport.Transport{}, fmt.Errorf("http: create publisher: %w", err)
	}
	return transport.Transport{Publisher: publisher}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.HTTPCapabilities
}
