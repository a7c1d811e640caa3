package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	loggingpkg "github.com/drblury/fakeflow/internal/runtime/logging"
)

// Stages reported by the errors_total counter.
const (
	StageInit    = "init"
	StageBuild   = "build"
	StageSplit   = "split"
	StageEnqueue = "enqueue"
	StageFlush   = "flush"
)

// GeneratorMetrics holds the Prometheus collectors of the production loop.
type GeneratorMetrics struct {
	mu sync.Mutex

	recordsTotal  *prometheus.CounterVec
	childrenTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	buildSeconds  *prometheus.HistogramVec

	registerer prometheus.Registerer
	registered bool
}

func newGeneratorCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fakeflow",
			Subsystem: "generator",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewGeneratorMetrics creates the collectors. A nil registerer means the
// Prometheus default registerer.
func NewGeneratorMetrics(registerer prometheus.Registerer) *GeneratorMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &GeneratorMetrics{
		registerer:    registerer,
		recordsTotal:  newGeneratorCounterVec("records_total", "Total number of records enqueued", []string{"topic"}),
		childrenTotal: newGeneratorCounterVec("children_total", "Total number of split children built", []string{"topic"}),
		errorsTotal:   newGeneratorCounterVec("errors_total", "Total number of errors that aborted a run", []string{"topic", "stage"}),
		buildSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fakeflow",
				Subsystem: "generator",
				Name:      "record_build_seconds",
				Help:      "Time spent building one record, split children included",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"topic"},
		),
	}
}

// Register registers the collectors. Safe to call multiple times; collectors
// registered earlier by another generator are reused.
func (m *GeneratorMetrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	if m.recordsTotal, err = registerCollector(m.registerer, m.recordsTotal); err != nil {
		return err
	}
	if m.childrenTotal, err = registerCollector(m.registerer, m.childrenTotal); err != nil {
		return err
	}
	if m.errorsTotal, err = registerCollector(m.registerer, m.errorsTotal); err != nil {
		return err
	}
	if m.buildSeconds, err = registerCollector(m.registerer, m.buildSeconds); err != nil {
		return err
	}

	m.registered = true
	return nil
}

func registerCollector[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *GeneratorMetrics) recordProduced(topic string, children int, took time.Duration) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(topic).Inc()
	if children > 0 {
		m.childrenTotal.WithLabelValues(topic).Add(float64(children))
	}
	m.buildSeconds.WithLabelValues(topic).Observe(took.Seconds())
}

func (m *GeneratorMetrics) recordError(topic, stage string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(topic, stage).Inc()
}

// DecoratePublisher counts publishes with Watermill's Prometheus publisher
// metrics.
func DecoratePublisher(pub message.Publisher, registerer prometheus.Registerer, pubsubSystem string) (message.Publisher, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	subsystem := strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToLower(pubsubSystem))
	builder := metrics.NewPrometheusMetricsBuilder(registerer, "fakeflow", subsystem)
	return builder.DecoratePublisher(pub)
}

// ServeMetrics exposes gatherer on :port/metrics until ctx is done.
func ServeMetrics(ctx context.Context, port int, gatherer prometheus.Gatherer, log loggingpkg.ServiceLogger) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting metrics server", loggingpkg.LogFields{"address": addr})
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
