// Package emitter records inventory query metrics and writes them in the
// Prometheus text format.
package emitter

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/sshcld/sshcld"

// PrometheusEmitter records provider queries as OTEL metrics exported to
// a private Prometheus registry.
type PrometheusEmitter struct {
	registry *promclient.Registry
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	queryDuration  metric.Float64Histogram
	instancesTotal metric.Int64Counter
	errorsTotal    metric.Int64Counter
}

// NewPrometheusEmitter creates an emitter with its own meter provider.
func NewPrometheusEmitter() (*PrometheusEmitter, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	e := &PrometheusEmitter{
		registry: registry,
		provider: provider,
		meter:    provider.Meter(meterName),
	}

	if err := e.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return e, nil
}

func (e *PrometheusEmitter) initMetrics() error {
	var err error

	e.queryDuration, err = e.meter.Float64Histogram(
		"sshcld_query_duration_seconds",
		metric.WithDescription("Time taken to query instances in one region"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create query_duration histogram: %w", err)
	}

	e.instancesTotal, err = e.meter.Int64Counter(
		"sshcld_instances_total",
		metric.WithDescription("Total instances returned by provider queries"),
	)
	if err != nil {
		return fmt.Errorf("create instances counter: %w", err)
	}

	e.errorsTotal, err = e.meter.Int64Counter(
		"sshcld_query_errors_total",
		metric.WithDescription("Total failed provider queries"),
	)
	if err != nil {
		return fmt.Errorf("create query_errors counter: %w", err)
	}

	return nil
}

// RecordQuery records one regional query.
func (e *PrometheusEmitter) RecordQuery(ctx context.Context, provider, region string, count int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("region", region),
	)

	e.queryDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		e.errorsTotal.Add(ctx, 1, attrs)
		log.Debug().
			Err(err).
			Str("provider", provider).
			Str("region", region).
			Msg("query failed")
		return
	}

	e.instancesTotal.Add(ctx, int64(count), attrs)
	log.Debug().
		Str("provider", provider).
		Str("region", region).
		Int("instances", count).
		Dur("duration", duration).
		Msg("query complete")
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format, replacing the file atomically.
func (e *PrometheusEmitter) WriteTextfile(path string) error {
	if err := promclient.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Close shuts down the meter provider.
func (e *PrometheusEmitter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
