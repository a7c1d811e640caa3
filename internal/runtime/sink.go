package runtime

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	idspkg "github.com/drblury/fakeflow/internal/runtime/ids"
	metadatapkg "github.com/drblury/fakeflow/internal/runtime/metadata"
	recordpkg "github.com/drblury/fakeflow/internal/runtime/record"
)

// Sink receives every finished record. Enqueue blocks until the record is
// handed off.
type Sink interface {
	Enqueue(ctx context.Context, rec recordpkg.Record) error
	Close() error
}

// Flusher is implemented by sinks that hold records back. Flush hands the held
// records downstream; the generator calls it before Close.
type Flusher interface {
	Flush(ctx context.Context) error
}

// FuncSink adapts a function to Sink.
type FuncSink func(ctx context.Context, rec recordpkg.Record) error

func (f FuncSink) Enqueue(ctx context.Context, rec recordpkg.Record) error { return f(ctx, rec) }
func (f FuncSink) Close() error                                          { return nil }

type ordinalKey struct{}

// withOrdinal tags ctx with the ordinal of the record being enqueued.
func withOrdinal(ctx context.Context, n uint64) context.Context {
	return context.WithValue(ctx, ordinalKey{}, n)
}

// OrdinalFromContext returns the ordinal of the record being enqueued.
func OrdinalFromContext(ctx context.Context) (uint64, bool) {
	n, ok := ctx.Value(ordinalKey{}).(uint64)
	return n, ok
}

// PublisherSink encodes records and publishes them to one topic.
type PublisherSink struct {
	publisher message.Publisher
	topic     string
	codec     Codec
	base      metadatapkg.Metadata
}

// NewPublisherSink returns a sink publishing to topic. base is copied onto
// every message.
func NewPublisherSink(publisher message.Publisher, topic string, codec Codec, base metadatapkg.Metadata) (*PublisherSink, error) {
	if publisher == nil {
		return nil, errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return nil, errspkg.ErrTopicRequired
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &PublisherSink{
		publisher: publisher,
		topic:     topic,
		codec:     codec,
		base: base.WithAll(metadatapkg.Metadata{
			metadatapkg.KeyContentType: codec.ContentType(),
			metadatapkg.KeySchema:      codec.Schema(),
		}),
	}, nil
}

// Topic returns the destination topic.
func (s *PublisherSink) Topic() string { return s.topic }

// Codec returns the payload codec.
func (s *PublisherSink) Codec() Codec { return s.codec }

func (s *PublisherSink) Enqueue(ctx context.Context, rec recordpkg.Record) error {
	payload, err := s.codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if payload == nil {
		return nil
	}
	return s.publish(ctx, payload)
}

// Flush publishes whatever a buffering codec still holds.
func (s *PublisherSink) Flush(ctx context.Context) error {
	buffered, ok := s.codec.(BufferedCodec)
	if !ok {
		return nil
	}
	payload, err := buffered.Drain()
	if err != nil {
		return fmt.Errorf("drain codec: %w", err)
	}
	if payload == nil {
		return nil
	}
	return s.publish(ctx, payload)
}

func (s *PublisherSink) publish(ctx context.Context, payload []byte) error {
	msg := NewMessage(payload, s.base)
	if n, ok := OrdinalFromContext(ctx); ok {
		msg.Metadata.Set(metadatapkg.KeyOrdinal, strconv.FormatUint(n, 10))
	}
	if ctx != nil {
		msg.SetContext(ctx)
	}
	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

func (s *PublisherSink) Close() error {
	return s.publisher.Close()
}

// NewMessage wraps payload in a Watermill message with a ULID id.
func NewMessage(payload []byte, md metadatapkg.Metadata) *message.Message {
	msg := message.NewMessage(idspkg.CreateULID(), payload)
	msg.Metadata = metadatapkg.ToWatermill(md)
	return msg
}
