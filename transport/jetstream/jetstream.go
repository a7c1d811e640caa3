// Package jetstream provides the NATS JetStream sink transport. Records are
// persisted in a stream whose subjects are prefixed with the stream name.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/drblury/fakeflow/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "nats-jetstream"

const (
	// DefaultStreamName is the stream records are stored in.
	DefaultStreamName = "FAKEFLOW"
	// DefaultMaxAge bounds how long records are retained.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// ErrClosed is returned when publishing to a closed transport.
var ErrClosed = errors.New("jetstream: transport closed")

// Connect allows overriding how the NATS connection is established for testing.
var Connect = func(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("fakeflow"))
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.NATSJetStreamCapabilities)
	transport.Alias("jetstream", TransportName)
}

// Build creates a new JetStream transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	pub, err := New(Config{URL: cfg.GetNATSURL()}, logger)
	if err != nil {
		return transport.Transport{}, err
	}
	return transport.Transport{Publisher: pub}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.NATSJetStreamCapabilities
}

// Config holds JetStream-specific configuration.
type Config struct {
	// URL is the NATS server URL.
	URL string
	// StreamName defaults to DefaultStreamName.
	StreamName string
	// Replicas is the number of stream replicas (for clustering).
	Replicas int
	// MaxAge defaults to DefaultMaxAge.
	MaxAge time.Duration
}

func (c Config) withDefaults() Config {
	if c.StreamName == "" {
		c.StreamName = DefaultStreamName
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	return c
}

// StreamConfig returns the stream definition for c.
func (c Config) StreamConfig() *nats.StreamConfig {
	c = c.withDefaults()
	return &nats.StreamConfig{
		Name:      c.StreamName,
		Subjects:  []string{c.StreamName + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    c.MaxAge,
		Replicas:  c.Replicas,
	}
}

// Subject returns the subject records of topic are published to.
func (c Config) Subject(topic string) string {
	return c.withDefaults().StreamName + "." + topic
}

// Publisher publishes records to a JetStream stream.
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	config Config
	logger watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// New connects to NATS and makes sure the stream exists.
func New(cfg Config, logger watermill.LoggerAdapter) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("jetstream: URL is required")
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	nc, err := Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("jetstream: connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: create context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, config: cfg, logger: logger}
	if err := p.ensureStream(); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStream() error {
	streamCfg := p.config.StreamConfig()
	if _, err := p.js.AddStream(streamCfg); err != nil {
		if _, updateErr := p.js.UpdateStream(streamCfg); updateErr != nil {
			return fmt.Errorf("jetstream: ensure stream %s: %w", streamCfg.Name, errors.Join(err, updateErr))
		}
	}
	p.logger.Debug("JetStream stream ready", watermill.LogFields{"stream": streamCfg.Name})
	return nil
}

// Publish stores every message and waits for the stream's ack. The message
// UUID is used as the JetStream message ID, so retried publishes deduplicate.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	subject := p.config.Subject(topic)
	for _, msg := range messages {
		if _, err := p.js.PublishMsg(ToNATS(subject, msg), nats.MsgId(msg.UUID)); err != nil {
			return fmt.Errorf("jetstream: publish %s: %w", msg.UUID, err)
		}
	}
	return nil
}

// Close drains the connection. Closing twice is a no-op.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.nc.Drain()
}

// ToNATS converts a watermill message to a NATS message carrying the
// metadata as headers.
func ToNATS(subject string, msg *message.Message) *nats.Msg {
	headers := nats.Header{}
	for k, v := range msg.Metadata {
		headers.Set(k, v)
	}
	return &nats.Msg{
		Subject: subject,
		Data:    msg.Payload,
		Header:  headers,
	}
}
