package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "game-trigger-service"
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

type otelInstruments struct {
	ctx                context.Context
	meter              metric.Meter
	requests           metric.Int64Counter
	requestLatencyMs   metric.Float64Histogram
	providerAttempts   metric.Int64Counter
	providerErrors     metric.Int64Counter
	providerLatencyMs  metric.Float64Histogram
	providerNotMod     metric.Int64Counter
	rateLimitSkips     metric.Int64Counter
	retryAfterMs       metric.Float64Histogram
	breakerRejects     metric.Int64Counter
	consensusResults   metric.Int64Counter
	consensusConf      metric.Float64Histogram
	consensusLatencyMs metric.Float64Histogram
	monitorCycles      metric.Int64Counter
	monitorFailures    metric.Int64Counter
	monitorLatencyMs   metric.Float64Histogram
	gameEvents         metric.Int64Counter
	validations        metric.Int64Counter
	validationLatency  metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("game-trigger-service")
	ctx := context.Background()

	inst := &otelInstruments{ctx: ctx, meter: meter}

	var err error
	if inst.requests, err = meter.Int64Counter("http_requests_total"); err != nil {
		return nil, err
	}
	if inst.requestLatencyMs, err = meter.Float64Histogram("http_request_duration_ms"); err != nil {
		return nil, err
	}
	if inst.providerAttempts, err = meter.Int64Counter("provider_attempts_total"); err != nil {
		return nil, err
	}
	if inst.providerErrors, err = meter.Int64Counter("provider_errors_total"); err != nil {
		return nil, err
	}
	if inst.providerLatencyMs, err = meter.Float64Histogram("provider_duration_ms"); err != nil {
		return nil, err
	}
	if inst.providerNotMod, err = meter.Int64Counter("provider_not_modified_total"); err != nil {
		return nil, err
	}
	if inst.rateLimitSkips, err = meter.Int64Counter("provider_rate_limit_skips_total"); err != nil {
		return nil, err
	}
	if inst.retryAfterMs, err = meter.Float64Histogram("provider_retry_after_ms"); err != nil {
		return nil, err
	}
	if inst.breakerRejects, err = meter.Int64Counter("provider_breaker_rejects_total"); err != nil {
		return nil, err
	}
	if inst.consensusResults, err = meter.Int64Counter("consensus_results_total"); err != nil {
		return nil, err
	}
	if inst.consensusConf, err = meter.Float64Histogram("consensus_confidence"); err != nil {
		return nil, err
	}
	if inst.consensusLatencyMs, err = meter.Float64Histogram("consensus_duration_ms"); err != nil {
		return nil, err
	}
	if inst.monitorCycles, err = meter.Int64Counter("monitor_cycles_total"); err != nil {
		return nil, err
	}
	if inst.monitorFailures, err = meter.Int64Counter("monitor_check_failures_total"); err != nil {
		return nil, err
	}
	if inst.monitorLatencyMs, err = meter.Float64Histogram("monitor_cycle_duration_ms"); err != nil {
		return nil, err
	}
	if inst.gameEvents, err = meter.Int64Counter("game_events_total"); err != nil {
		return nil, err
	}
	if inst.validations, err = meter.Int64Counter("validations_total"); err != nil {
		return nil, err
	}
	if inst.validationLatency, err = meter.Float64Histogram("validation_duration_ms"); err != nil {
		return nil, err
	}

	return inst, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordProviderAttempt(provider string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	o.recordCounter(o.providerAttempts, 1, attrs...)
	o.recordHistogram(o.providerLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.providerErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordNotModified(provider string) {
	if o == nil {
		return
	}
	o.recordCounter(o.providerNotMod, 1, attribute.String(AttrProvider, provider))
}

func (o *otelInstruments) recordRateLimitSkip(provider string, retryAfter time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	o.recordCounter(o.rateLimitSkips, 1, attrs...)
	if retryAfter > 0 {
		o.recordHistogram(o.retryAfterMs, float64(retryAfter.Milliseconds()), attrs...)
	}
}

func (o *otelInstruments) recordBreakerReject(provider string) {
	if o == nil {
		return
	}
	o.recordCounter(o.breakerRejects, 1, attribute.String(AttrProvider, provider))
}

func (o *otelInstruments) recordConsensus(status string, confidence float64, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrConsensus, status)}
	o.recordCounter(o.consensusResults, 1, attrs...)
	o.recordHistogram(o.consensusConf, confidence, attrs...)
	o.recordHistogram(o.consensusLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordMonitorCycle(duration time.Duration, failedChecks int) {
	if o == nil {
		return
	}
	o.recordCounter(o.monitorCycles, 1)
	o.recordHistogram(o.monitorLatencyMs, float64(duration.Milliseconds()))
	if failedChecks > 0 {
		o.recordCounter(o.monitorFailures, int64(failedChecks))
	}
}

func (o *otelInstruments) recordGameEvent(eventType string) {
	if o == nil {
		return
	}
	o.recordCounter(o.gameEvents, 1, attribute.String(AttrEventType, eventType))
}

func (o *otelInstruments) recordValidation(approved bool, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrApproved, strconv.FormatBool(approved))}
	o.recordCounter(o.validations, 1, attrs...)
	o.recordHistogram(o.validationLatency, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
