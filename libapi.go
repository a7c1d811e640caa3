package fakeflow

import (
	runtimepkg "github.com/drblury/fakeflow/internal/runtime"
	configpkg "github.com/drblury/fakeflow/internal/runtime/config"
	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	idspkg "github.com/drblury/fakeflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/fakeflow/internal/runtime/jsoncodec"
	keyspkg "github.com/drblury/fakeflow/internal/runtime/keys"
	loggingpkg "github.com/drblury/fakeflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fakeflow/internal/runtime/metadata"
	recordpkg "github.com/drblury/fakeflow/internal/runtime/record"
	resolverpkg "github.com/drblury/fakeflow/internal/runtime/resolver"
	"github.com/drblury/fakeflow/transport"
)

type (
	Config                = configpkg.Config
	FieldRule             = configpkg.FieldRule
	Generator             = runtimepkg.Generator
	GeneratorDependencies = runtimepkg.GeneratorDependencies
	GeneratorState        = runtimepkg.State
	GeneratorMetrics      = runtimepkg.GeneratorMetrics

	Record = recordpkg.Record
	Path   = recordpkg.Path

	Sink          = runtimepkg.Sink
	Flusher       = runtimepkg.Flusher
	FuncSink      = runtimepkg.FuncSink
	PublisherSink = runtimepkg.PublisherSink

	Codec         = runtimepkg.Codec
	BufferedCodec = runtimepkg.BufferedCodec
	JSONCodec     = runtimepkg.JSONCodec
	ProtoCodec    = runtimepkg.ProtoCodec
	LineCodec     = runtimepkg.LineCodec

	Decorator        = runtimepkg.Decorator
	DecoratorFunc    = runtimepkg.DecoratorFunc
	DefaultDecorator = runtimepkg.DefaultDecorator
	HostIdentity     = runtimepkg.HostIdentity

	// Generator registry for field rule references such as "Name.first_name".
	GeneratorFunc     = resolverpkg.GeneratorFunc
	GeneratorCall     = resolverpkg.Call
	GeneratorRegistry = resolverpkg.Registry

	KeyPool = keyspkg.Pool

	Metadata = metadatapkg.Metadata

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
	LogOptions    = loggingpkg.Options

	ConfigValidationError = errspkg.ConfigValidationError
	UnknownGeneratorError = errspkg.UnknownGeneratorError
	TemplateError         = errspkg.TemplateError

	TransportBuilder      = transport.Builder
	TransportConfig       = transport.Config
	TransportRegistry     = transport.Registry
	TransportCapabilities = transport.Capabilities
	RecordCounter         = transport.RecordCounter
)

var (
	NewGenerator     = runtimepkg.NewGenerator
	MustNewGenerator = runtimepkg.MustNewGenerator

	LoadConfig     = configpkg.Load
	ParseConfig    = configpkg.Parse
	MarshalConfig  = configpkg.Marshal
	ValidateConfig = configpkg.ValidateConfig
	Times          = configpkg.Times

	NewPublisherSink   = runtimepkg.NewPublisherSink
	NewCodec           = runtimepkg.NewCodec
	NewLineCodec       = runtimepkg.NewLineCodec
	OrdinalFromContext = runtimepkg.OrdinalFromContext

	NewGeneratorMetrics = runtimepkg.NewGeneratorMetrics
	ServeMetrics        = runtimepkg.ServeMetrics

	NewRecord     = recordpkg.New
	ParsePath     = recordpkg.ParsePath
	MustParsePath = recordpkg.MustParsePath
	Sprintf       = recordpkg.Sprintf

	// RegisterGenerator adds a generator to the default registry. Register
	// before creating generators that reference it.
	RegisterGenerator        = resolverpkg.Register
	DefaultGeneratorRegistry = resolverpkg.DefaultRegistry
	NewGeneratorRegistry     = resolverpkg.NewDefaultRegistry

	// Use RegisterTransport to plug in a custom sink; the built-in transports
	// are registered already.
	DefaultTransportRegistry = transport.DefaultRegistry
	RegisterTransport        = transport.Register
	BuildTransport           = transport.Build
	GetCapabilities          = transport.GetCapabilities

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrConfigRequired       = errspkg.ErrConfigRequired
	ErrLoggerRequired       = errspkg.ErrLoggerRequired
	ErrPublisherRequired    = errspkg.ErrPublisherRequired
	ErrTopicRequired        = errspkg.ErrTopicRequired
	ErrSinkRequired         = errspkg.ErrSinkRequired
	ErrRecordRequired       = errspkg.ErrRecordRequired
	ErrAlreadyRan           = errspkg.ErrAlreadyRan
	ErrUnknownGenerator     = errspkg.ErrUnknownGenerator
	ErrInvalidReference     = errspkg.ErrInvalidReference
	ErrInvalidArgument      = errspkg.ErrInvalidArgument
	ErrInvalidFieldPath     = errspkg.ErrInvalidFieldPath
	ErrFieldConflict        = errspkg.ErrFieldConflict
	ErrTemplateSyntax       = errspkg.ErrTemplateSyntax
	ErrTemplateFieldMissing = errspkg.ErrTemplateFieldMissing
	ErrEmptyKeyPool         = errspkg.ErrEmptyKeyPool
	ErrKeySpaceExhausted    = errspkg.ErrKeySpaceExhausted
	ErrUnknownCodec         = errspkg.ErrUnknownCodec

	NewLogger                 = loggingpkg.New
	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter
	ParseLogLevel             = loggingpkg.ParseLevel
	DiscardLogger             = loggingpkg.Discard

	NewMetadata = metadatapkg.New

	CreateULID = idspkg.CreateULID
)

// Generator lifecycle states.
const (
	StateInit    = runtimepkg.StateInit
	StateRunning = runtimepkg.StateRunning
	StateStopped = runtimepkg.StateStopped
)

// Codec names accepted by Config.Codec.
const (
	CodecJSON  = configpkg.CodecJSON
	CodecProto = configpkg.CodecProto
	CodecLines = configpkg.CodecLines
)

// Metadata keys set on every published message.
const (
	MetadataKeyOrigin      = metadatapkg.KeyOrigin
	MetadataKeyHost        = metadatapkg.KeyHost
	MetadataKeyRunID       = metadatapkg.KeyRunID
	MetadataKeyOrdinal     = metadatapkg.KeyOrdinal
	MetadataKeyContentType = metadatapkg.KeyContentType
	MetadataKeySchema      = metadatapkg.KeySchema
)
