package runtime

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	configpkg "github.com/drblury/fakeflow/internal/runtime/config"
	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	jsoncodec "github.com/drblury/fakeflow/internal/runtime/jsoncodec"
	recordpkg "github.com/drblury/fakeflow/internal/runtime/record"
)

// Codec turns a finished record into a message payload.
type Codec interface {
	Encode(rec recordpkg.Record) ([]byte, error)
	ContentType() string
	Schema() string
}

// BufferedCodec holds encoded records back until a batch is complete. Encode
// returns a nil payload while it is still holding.
type BufferedCodec interface {
	Codec
	Pending() int
	// Drain returns the held records as one payload and empties the buffer.
	Drain() ([]byte, error)
}

// NewCodec returns the codec registered under name. batchSize only applies
// to the "lines" codec.
func NewCodec(name string, batchSize int) (Codec, error) {
	switch strings.ToLower(name) {
	case "", configpkg.CodecJSON:
		return JSONCodec{}, nil
	case configpkg.CodecProto:
		return ProtoCodec{}, nil
	case configpkg.CodecLines:
		return NewLineCodec(batchSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", errspkg.ErrUnknownCodec, name)
	}
}

// JSONCodec encodes one record per payload as a JSON object.
type JSONCodec struct{}

func (JSONCodec) Encode(rec recordpkg.Record) ([]byte, error) {
	if rec == nil {
		return nil, errspkg.ErrRecordRequired
	}
	return jsoncodec.Marshal(rec.Plain())
}

func (JSONCodec) ContentType() string { return "application/json" }
func (JSONCodec) Schema() string      { return "fakeflow.record.v1+json" }

// ProtoCodec encodes one record per payload as a google.protobuf.Struct.
type ProtoCodec struct{}

func (ProtoCodec) Encode(rec recordpkg.Record) ([]byte, error) {
	if rec == nil {
		return nil, errspkg.ErrRecordRequired
	}
	msg, err := structpb.NewStruct(rec.Plain())
	if err != nil {
		return nil, fmt.Errorf("record to struct: %w", err)
	}
	return proto.Marshal(msg)
}

func (ProtoCodec) ContentType() string { return "application/x-protobuf" }
func (ProtoCodec) Schema() string {
	return string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())
}

// LineCodec packs records into newline-delimited JSON payloads of BatchSize
// records each.
type LineCodec struct {
	BatchSize int

	mu      sync.Mutex
	buf     bytes.Buffer
	pending int
}

// NewLineCodec returns a LineCodec; a batch size below 1 means 1.
func NewLineCodec(batchSize int) *LineCodec {
	if batchSize < 1 {
		batchSize = 1
	}
	return &LineCodec{BatchSize: batchSize}
}

func (c *LineCodec) Encode(rec recordpkg.Record) ([]byte, error) {
	if rec == nil {
		return nil, errspkg.ErrRecordRequired
	}
	line, err := jsoncodec.Marshal(rec.Plain())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Write(line)
	c.buf.WriteByte('\n')
	c.pending++
	if c.pending < c.BatchSize {
		return nil, nil
	}
	return c.drainLocked(), nil
}

func (c *LineCodec) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *LineCodec) Drain() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == 0 {
		return nil, nil
	}
	return c.drainLocked(), nil
}

func (c *LineCodec) drainLocked() []byte {
	out := bytes.Clone(c.buf.Bytes())
	c.buf.Reset()
	c.pending = 0
	return out
}

func (c *LineCodec) ContentType() string { return "application/x-ndjson" }
func (c *LineCodec) Schema() string      { return "fakeflow.record.v1+ndjson" }
