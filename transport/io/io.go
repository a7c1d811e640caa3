// Package io provides the file sink transport. Every published record is
// appended to a file as one JSON line.
package io

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/fakeflow/internal/runtime/jsoncodec"
	"github.com/drblury/fakeflow/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "io"

// DefaultFilePath is used when no file is configured.
const DefaultFilePath = "records.ndjson"

// ErrClosed is returned when publishing to a closed file publisher.
var ErrClosed = errors.New("io: publisher closed")

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(filePath string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return NewPublisher(filePath, logger)
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.IOCapabilities)
	transport.Alias("file", TransportName)
}

// Build creates a new file transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	filePath := cfg.GetIOFile()
	if filePath == "" {
		filePath = DefaultFilePath
	}

	pub, err := PublisherFactory(filePath, logger)
	if err != nil {
		return transport.Transport{}, err
	}
	return transport.Transport{Publisher: pub}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.IOCapabilities
}

// Line is one stored record. Payload holds the encoded record bytes.
type Line struct {
	UUID     string            `json:"uuid"`
	Topic    string            `json:"topic"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// Publisher appends records to a file. The file is opened once and kept open
// until Close.
type Publisher struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	logger watermill.LoggerAdapter
	closed bool
}

// NewPublisher opens (or creates) filePath for appending.
func NewPublisher(filePath string, logger watermill.LoggerAdapter) (*Publisher, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("io: open %s: %w", filePath, err)
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{file: f, writer: bufio.NewWriter(f), logger: logger}, nil
}

// Publish writes one line per message and flushes before returning.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	for _, msg := range messages {
		line := Line{UUID: msg.UUID, Topic: topic, Metadata: msg.Metadata, Payload: msg.Payload}
		if err := jsoncodec.Encode(p.writer, line); err != nil {
			return fmt.Errorf("io: write record %s: %w", msg.UUID, err)
		}
	}
	if err := p.writer.Flush(); err != nil {
		return fmt.Errorf("io: flush: %w", err)
	}
	p.logger.Trace("Records appended", watermill.LogFields{"topic": topic, "count": len(messages)})
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.writer.Flush(), p.file.Close())
}

// ReadLines decodes every line stored in filePath.
func ReadLines(filePath string) ([]Line, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var line Line
		if err := jsoncodec.Unmarshal(scanner.Bytes(), &line); err != nil {
			return lines, fmt.Errorf("io: decode line %d: %w", len(lines)+1, err)
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
