/*
Package runtime implements the fakeflow record generator.

# Architecture Overview

A Generator owns one run. It compiles the configured field rules once, then
loops: build a record, expand the split field into children, stamp keys,
decorate, and hand the result to a Sink. Production stops when the target
count is reached, the context is cancelled or Stop is called.

# Package Structure

## Generator (generator.go)

The Generator wires together:
  - Compiled field rules (resolver, builder)
  - Primary key and foreign key pool (keys)
  - The Decorator applied to every top-level record
  - The Sink and, when it built one, the transport behind it
  - Optional Prometheus metrics and an otel span per record

## Sinks and codecs (sink.go, codec.go)

PublisherSink encodes records with a Codec and publishes them to a Watermill
publisher. LineCodec holds records back until its batch is full; the
generator flushes what is left when a run ends.

## Decoration (decorator.go)

DefaultDecorator adds the host, type, tags and add_fields to top-level
records. Children are never decorated.

## Metrics (metrics.go)

GeneratorMetrics counts produced records, children and errors.
DecoratePublisher wraps the transport publisher with Watermill's Prometheus
metrics. ServeMetrics exposes /metrics.

# Subpackages

  - config: Config, FieldRule, YAML loading and validation
  - resolver: generator references and the built-in generator families
  - record: records, field paths and %{field} templates
  - builder: field rule evaluation and split child batches
  - keys: primary keys and the foreign key pool
  - logging: ServiceLogger over slog and Watermill
  - errors: sentinel and typed errors
  - metadata, ids, jsoncodec: message metadata, ULIDs and JSON encoding

# Transports

Transports register themselves with the transport package; importing this
package pulls in every built-in transport.
*/
package runtime
