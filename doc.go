// Package fakeflow generates synthetic events and publishes them through
// Watermill. A Config lists field rules, each either a generator reference
// ("Name.first_name", "Number.number(5)") or a literal that may interpolate
// earlier fields with %{field}. The Generator builds records from those rules,
// optionally expands a split field into child records, correlates children to
// a pool of foreign keys, stamps a primary key on every record and hands each
// finished record to a Sink.
//
// By default the Sink is built from Config.PubSubSystem: the record is encoded
// by the configured codec (json, proto or lines) and published to Config.Topic.
//
// # Transports
//
// fakeflow publishes to these transports out of the box:
//   - channel: in-memory Go channels for tests and local runs
//   - io: newline-delimited JSON appended to a file
//   - kafka: partitioned, durable streaming
//   - rabbitmq: durable AMQP exchanges
//   - nats and nats-jetstream: core NATS and persistent JetStream streams
//   - http: one POST per record
//   - aws and aws-sqs: SNS topics or SQS queues, with LocalStack support
//   - sqlite and postgres: a generated_records table
//
// Custom transports are added with RegisterTransport, custom generators with
// RegisterGenerator.
//
// # Running
//
// A run is bounded by Config.TargetCount (0 runs until stopped) and paced by
// Config.Interval. Cancel the context passed to Generator.Run or call
// Generator.Stop to end it early; Generator.Close flushes records a batching
// codec still holds and closes the transport.
package fakeflow
