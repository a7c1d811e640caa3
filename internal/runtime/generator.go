package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	builderpkg "github.com/drblury/fakeflow/internal/runtime/builder"
	configpkg "github.com/drblury/fakeflow/internal/runtime/config"
	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
	idspkg "github.com/drblury/fakeflow/internal/runtime/ids"
	keyspkg "github.com/drblury/fakeflow/internal/runtime/keys"
	loggingpkg "github.com/drblury/fakeflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fakeflow/internal/runtime/metadata"
	recordpkg "github.com/drblury/fakeflow/internal/runtime/record"
	resolverpkg "github.com/drblury/fakeflow/internal/runtime/resolver"
	"github.com/drblury/fakeflow/transport"
)

// Origin is passed to the Decorator for every generated record.
const Origin = "fakeflow.generator"

const tracerName = "github.com/drblury/fakeflow"

// State is the lifecycle position of a Generator.
type State int32

const (
	StateInit State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// GeneratorDependencies holds the optional collaborators of a Generator.
// Leave fields nil to get the defaults.
type GeneratorDependencies struct {
	// Sink receives the records. When nil a PublisherSink is built from the
	// transport registry; that sink is closed by Generator.Close, a supplied
	// one is not.
	Sink Sink
	// Transports resolves Config.PubSubSystem. Defaults to transport.DefaultRegistry.
	Transports *transport.Registry
	// Generators resolves field rule references. Defaults to resolver.DefaultRegistry.
	Generators *resolverpkg.Registry
	// Rand is the random source. Defaults to a faker seeded with Config.Seed.
	Rand *gofakeit.Faker
	// Decorator defaults to a DefaultDecorator built from the config.
	Decorator Decorator
	// Host defaults to OSHostname.
	Host HostIdentity
	// MetricsRegisterer receives the generator collectors when
	// Config.MetricsEnabled is set. Defaults to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
	// Tracer defaults to the global OpenTelemetry tracer provider.
	Tracer trace.Tracer
	// Clock stamps @timestamp. Defaults to time.Now.
	Clock func() time.Time
}

// Generator produces records according to one Config. A Generator runs once.
type Generator struct {
	Conf   configpkg.Config
	Logger loggingpkg.ServiceLogger

	rng       *gofakeit.Faker
	builder   *builderpkg.Builder
	rules     []builderpkg.Rule
	split     *builderpkg.Split
	sink      Sink
	ownsSink  bool
	decorator Decorator
	metrics   *GeneratorMetrics
	tracer    trace.Tracer
	now       func() time.Time

	runID string
	host  string

	primaryField recordpkg.Path
	primaryValue string
	pool         *keyspkg.Pool

	state    atomic.Int32
	produced atomic.Uint64
	started  atomic.Bool
	stopped  atomic.Bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// NewGenerator validates conf, compiles every rule and prepares the sink.
// Unknown generator references fail here, before anything is produced.
func NewGenerator(ctx context.Context, conf *configpkg.Config, log loggingpkg.ServiceLogger, deps GeneratorDependencies) (*Generator, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	c := conf.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	g := &Generator{
		Conf:      c,
		rng:       deps.Rand,
		decorator: deps.Decorator,
		tracer:    deps.Tracer,
		now:       deps.Clock,
		runID:     idspkg.CreateULID(),
	}
	g.Logger = log.With(loggingpkg.LogFields{"run_id": g.runID})
	if g.rng == nil {
		g.rng = gofakeit.New(c.Seed)
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(tracerName)
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.builder = builderpkg.New(g.rng, builderpkg.WithClock(g.now))

	if err := g.compile(deps.Generators); err != nil {
		return nil, err
	}

	g.host = resolveHost(deps.Host, g.Logger)
	if g.decorator == nil {
		g.decorator = DefaultDecorator{Host: g.host, Type: c.Type, Tags: c.Tags, AddFields: c.AddFields}
	}

	if c.MetricsEnabled {
		g.metrics = NewGeneratorMetrics(deps.MetricsRegisterer)
		if err := g.metrics.Register(); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	if deps.Sink != nil {
		g.sink = deps.Sink
	} else {
		sink, err := g.buildSink(ctx, deps)
		if err != nil {
			return nil, err
		}
		g.sink = sink
		g.ownsSink = true
	}

	g.Logger.Info("Created generator", loggingpkg.LogFields{
		"pubsub_system": c.PubSubSystem,
		"topic":         c.Topic,
		"target_count":  c.TargetCount,
		"rules":         len(g.rules),
		"split_field":   c.SplitField,
		"config":        c,
	})
	return g, nil
}

// MustNewGenerator is NewGenerator that panics on error.
func MustNewGenerator(ctx context.Context, conf *configpkg.Config, log loggingpkg.ServiceLogger, deps GeneratorDependencies) *Generator {
	g, err := NewGenerator(ctx, conf, log, deps)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Generator) compile(registry *resolverpkg.Registry) error {
	var errs []error

	rules, err := builderpkg.Compile(g.Conf.FieldRules, registry)
	if err != nil {
		errs = append(errs, fmt.Errorf("field_rules: %w", err))
	}
	g.rules = rules

	if g.Conf.SplitField != "" {
		split, err := g.compileSplit(registry)
		if err != nil {
			errs = append(errs, err)
		}
		g.split = split
	}

	if g.Conf.PrimaryKeyEnabled {
		g.primaryField, err = recordpkg.ParsePath(g.Conf.PrimaryKeyField)
		if err != nil {
			errs = append(errs, fmt.Errorf("primary_key_field: %w", err))
		}
		g.primaryValue = g.Conf.PrimaryKeyValue
	}
	return errors.Join(errs...)
}

func (g *Generator) compileSplit(registry *resolverpkg.Registry) (*builderpkg.Split, error) {
	var errs []error
	split := &builderpkg.Split{Count: g.Conf.SplitCount}

	field, err := recordpkg.ParsePath(g.Conf.SplitField)
	if err != nil {
		errs = append(errs, fmt.Errorf("split_field: %w", err))
	}
	split.Field = field

	if split.Literal, err = builderpkg.Compile(g.Conf.SplitLiteralRules, registry); err != nil {
		errs = append(errs, fmt.Errorf("split_literal_rules: %w", err))
	}
	if split.Faker, err = builderpkg.Compile(g.Conf.SplitFakerRules, registry); err != nil {
		errs = append(errs, fmt.Errorf("split_faker_rules: %w", err))
	}
	if g.Conf.ForeignKeyEnabled {
		if split.ForeignKey, err = recordpkg.ParsePath(g.Conf.ForeignKeyField); err != nil {
			errs = append(errs, fmt.Errorf("foreign_key_field: %w", err))
		}
	}
	return split, errors.Join(errs...)
}

func (g *Generator) buildSink(ctx context.Context, deps GeneratorDependencies) (Sink, error) {
	codec, err := NewCodec(g.Conf.Codec, g.Conf.BatchSize)
	if err != nil {
		return nil, err
	}

	registry := deps.Transports
	if registry == nil {
		registry = transport.DefaultRegistry
	}
	built, err := registry.Build(ctx, &g.Conf, loggingpkg.NewWatermillAdapter(g.Logger))
	if err != nil {
		return nil, fmt.Errorf("build %s transport: %w", g.Conf.PubSubSystem, err)
	}

	publisher := built.Publisher
	if g.Conf.MetricsEnabled {
		if publisher, err = DecoratePublisher(publisher, deps.MetricsRegisterer, g.Conf.PubSubSystem); err != nil {
			return nil, fmt.Errorf("decorate publisher: %w", err)
		}
	}

	return NewPublisherSink(publisher, g.Conf.Topic, codec, metadatapkg.New(
		metadatapkg.KeyOrigin, Origin,
		metadatapkg.KeyHost, g.host,
		metadatapkg.KeyRunID, g.runID,
	))
}

func resolveHost(host HostIdentity, log loggingpkg.ServiceLogger) string {
	if host == nil {
		host = OSHostname
	}
	name, err := host()
	if err != nil || name == "" {
		log.Error("Could not resolve host name", err, nil)
		return "localhost"
	}
	return name
}

// Run produces records until the target count is reached, ctx is cancelled
// or Stop is called. Key material is set up once before the first record.
// Cancellation is a normal stop and returns nil. The first error aborts the
// run and is returned.
func (g *Generator) Run(ctx context.Context) (err error) {
	if !g.started.CompareAndSwap(false, true) {
		return errspkg.ErrAlreadyRan
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.cancelMu.Lock()
	g.cancel = cancel
	g.cancelMu.Unlock()
	defer g.state.Store(int32(StateStopped))

	if err := g.init(); err != nil {
		g.metrics.recordError(g.Conf.Topic, StageInit)
		g.Logger.Error("Generator setup failed", err, nil)
		return fmt.Errorf("init: %w", err)
	}

	g.state.Store(int32(StateRunning))
	started := time.Now()
	g.Logger.Info("Generator running", loggingpkg.LogFields{
		"target_count": g.Conf.TargetCount,
		"interval":     g.Conf.Interval.String(),
	})

	defer func() {
		if flushErr := g.flush(context.WithoutCancel(ctx)); flushErr != nil {
			err = errors.Join(err, flushErr)
		}
		g.Logger.Info("Generator stopped", loggingpkg.LogFields{
			"produced": g.produced.Load(),
			"duration": time.Since(started).String(),
		})
	}()

	// runCtx only ends the loop and the interval wait. The record in progress
	// is built and handed off under a context Stop cannot cancel.
	recordCtx := context.WithoutCancel(ctx)
	for g.shouldContinue(runCtx) {
		ordinal := g.produced.Load() + 1
		if err := g.produce(recordCtx, ordinal); err != nil {
			g.Logger.Error("Record production failed", err, loggingpkg.LogFields{"ordinal": ordinal})
			return fmt.Errorf("record %d: %w", ordinal, err)
		}
		g.produced.Add(1)
		if g.Conf.Interval > 0 && g.shouldContinue(runCtx) {
			g.wait(runCtx, g.Conf.Interval)
		}
	}
	return nil
}

// init resolves the run-scoped key material exactly once.
func (g *Generator) init() error {
	if g.Conf.PrimaryKeyEnabled && g.primaryValue == "" {
		key, err := keyspkg.GeneratePrimaryKey(g.rng)
		if err != nil {
			return fmt.Errorf("primary key: %w", err)
		}
		g.primaryValue = key
	}

	if g.Conf.ForeignKeyEnabled && g.pool == nil {
		var (
			pool *keyspkg.Pool
			err  error
		)
		if g.Conf.ForeignKeyPool != nil {
			pool, err = keyspkg.NewPool(g.Conf.ForeignKeyPool)
		} else {
			pool, err = keyspkg.GeneratePool(g.rng, keyspkg.PoolSize(g.Conf.SplitCount, g.Conf.TargetCount))
		}
		if err != nil {
			return fmt.Errorf("foreign key pool: %w", err)
		}
		g.pool = pool
		if g.split != nil {
			g.split.Pool = pool
		}
	}

	if g.Conf.PrimaryKeyEnabled || g.Conf.ForeignKeyEnabled {
		fields := loggingpkg.LogFields{}
		if g.Conf.PrimaryKeyEnabled {
			fields["primary_key"] = g.primaryField.String() + "=" + g.primaryValue
		}
		if g.pool != nil {
			fields["foreign_key_pool"] = g.pool.Len()
		}
		g.Logger.Debug("Prepared correlation keys", fields)
	}
	return nil
}

func (g *Generator) shouldContinue(ctx context.Context) bool {
	if g.stopped.Load() || ctx.Err() != nil {
		return false
	}
	target := g.Conf.TargetCount
	return target <= 0 || g.produced.Load() < uint64(target)
}

func (g *Generator) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// produce builds one record and hands it to the sink.
func (g *Generator) produce(ctx context.Context, ordinal uint64) (err error) {
	ctx, span := g.tracer.Start(ctx, "fakeflow.generate",
		trace.WithAttributes(attribute.Int64("fakeflow.ordinal", int64(ordinal))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	began := time.Now()
	rec := recordpkg.New(g.now())

	if err := g.builder.Apply(rec, g.rules, nil, g.Conf.OverwriteFields); err != nil {
		g.metrics.recordError(g.Conf.Topic, StageBuild)
		return err
	}

	children := 0
	if g.split != nil {
		if children, err = g.builder.Expand(rec, *g.split); err != nil {
			g.metrics.recordError(g.Conf.Topic, StageSplit)
			return err
		}
	}
	span.SetAttributes(attribute.Int("fakeflow.children", children))

	if g.Conf.PrimaryKeyEnabled {
		rec.Set(g.primaryField, g.primaryValue)
	}

	if err := g.emit(withOrdinal(ctx, ordinal), rec); err != nil {
		g.metrics.recordError(g.Conf.Topic, StageEnqueue)
		return err
	}
	g.metrics.recordProduced(g.Conf.Topic, children, time.Since(began))
	g.Logger.Trace("Record produced", loggingpkg.LogFields{"ordinal": ordinal, "children": children})
	return nil
}

func (g *Generator) emit(ctx context.Context, rec recordpkg.Record) error {
	g.decorator.Decorate(rec, Origin)
	return g.sink.Enqueue(ctx, rec)
}

func (g *Generator) flush(ctx context.Context) error {
	flusher, ok := g.sink.(Flusher)
	if !ok {
		return nil
	}
	if err := flusher.Flush(ctx); err != nil {
		g.metrics.recordError(g.Conf.Topic, StageFlush)
		g.Logger.Error("Flushing buffered records failed", err, nil)
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Stop asks a running generator to finish after the record in progress. A
// generator stopped before Run produces nothing.
func (g *Generator) Stop() {
	g.stopped.Store(true)
	g.cancelMu.Lock()
	defer g.cancelMu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
}

// Close stops the generator, flushes held records and closes the sink it
// built. Safe to call more than once.
func (g *Generator) Close() error {
	g.Stop()
	g.closeOnce.Do(func() {
		var errs []error
		if err := g.flush(context.Background()); err != nil {
			errs = append(errs, err)
		}
		if g.ownsSink {
			if err := g.sink.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close sink: %w", err))
			}
		}
		g.closeErr = errors.Join(errs...)
	})
	return g.closeErr
}

// Produced returns how many records have been enqueued.
func (g *Generator) Produced() uint64 { return g.produced.Load() }

// State returns the lifecycle state.
func (g *Generator) State() State { return State(g.state.Load()) }

// RunID identifies this generator in logs and message metadata.
func (g *Generator) RunID() string { return g.runID }

// Host returns the resolved host identity.
func (g *Generator) Host() string { return g.host }

// PrimaryKey returns the primary key stamped on every record. The value is
// empty until Run has set it up, or when primary keys are disabled.
func (g *Generator) PrimaryKey() (recordpkg.Path, string) {
	return g.primaryField, g.primaryValue
}

// Pool returns the foreign key pool, or nil before Run or when foreign keys
// are disabled.
func (g *Generator) Pool() *keyspkg.Pool { return g.pool }
