package infrastructure

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"ipedsprep/internal/config"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/pkg/contracts"
)

// InstrumentationName names the tracer and meter
const InstrumentationName = "ipedsprep"

// Telemetry bundles the tracer, meter and pipeline instruments for one process.
// With telemetry disabled every member is a no-op and Shutdown does nothing.
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *PipelineMetrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	traceFile      *os.File
	metricsFile    string
	logger         *slog.Logger
}

// NoopTelemetry returns telemetry that records nothing
func NoopTelemetry() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	metrics, _ := NewPipelineMetrics(meter)
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
		logger:  slog.Default(),
	}
}

// InitializeTelemetry wires tracing and metrics. Spans go to cfg.TraceFile via
// stdouttrace when set. Metrics are held in a private prometheus registry and
// written to cfg.MetricsFile on Shutdown; nothing listens on the network.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if !cfg.Enabled {
		return NoopTelemetry(), nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	t := &Telemetry{metricsFile: cfg.MetricsFile, logger: logger}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, apperrors.NewConfigError("failed to create trace directory", err)
		}
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to open trace file", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	t.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	t.Tracer = t.tracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))

	t.registry = prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.meterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version))

	t.Metrics, err = NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.Info("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))
	return t, nil
}

// Gather exposes the registry for tests and textfile output.
func (t *Telemetry) Gather() (prometheus.Gatherer, bool) {
	if t.registry == nil {
		return nil, false
	}
	return t.registry, true
}

// Shutdown writes the metrics textfile, flushes spans and closes the trace file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.registry != nil && t.metricsFile != "" {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, err)
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, err)
		}
		t.traceFile = nil
	}
	return stderrors.Join(errs...)
}

// errorTypeKey matches the error_type field used in log records
const errorTypeKey = "error_type"

// stageBuckets are the stage duration histogram boundaries, in seconds
var stageBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the pipeline's instruments
type PipelineMetrics struct {
	RecordsProcessed  metric.Int64Counter
	ArtifactsWritten  metric.Int64Counter
	RunsSkipped       metric.Int64Counter
	RunFailures       metric.Int64Counter
	NonConformingIDs  metric.Int64Counter
	StageDuration     metric.Float64Histogram
	DatasetCacheHits  metric.Int64Counter
	DatasetCacheMiss  metric.Int64Counter
	DatasetLoadErrors metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RecordsProcessed, "ipeds_records_processed_total", "Rows persisted to artifacts"},
		{&m.ArtifactsWritten, "ipeds_artifacts_written_total", "Artifacts published"},
		{&m.RunsSkipped, "ipeds_runs_skipped_total", "Yearly runs skipped because the artifact already exists"},
		{&m.RunFailures, "ipeds_run_failures_total", "Failed processing runs"},
		{&m.NonConformingIDs, "ipeds_nonconforming_identifiers_total", "OPE IDs not matching the expected format"},
		{&m.DatasetCacheHits, "ipeds_dataset_cache_hits_total", "Merged dataset cache hits"},
		{&m.DatasetCacheMiss, "ipeds_dataset_cache_misses_total", "Merged dataset cache misses"},
		{&m.DatasetLoadErrors, "ipeds_dataset_load_errors_total", "Merged dataset loads that failed"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	m.StageDuration, err = meter.Float64Histogram(
		"ipeds_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordStage records a stage duration with kind and outcome attributes
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage, kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordFailure counts a failed run by error type
func (m *PipelineMetrics) RecordFailure(ctx context.Context, kind string, err error) {
	if m == nil || err == nil {
		return
	}
	errType := string(apperrors.TypeOf(err))
	if errType == "" {
		errType = "UNKNOWN"
	}
	m.RunFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String(errorTypeKey, errType),
	))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errType := apperrors.TypeOf(err); errType != "" {
		span.SetAttributes(attribute.String(errorTypeKey, string(errType)))
	}
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
