// Package metrics wires OpenTelemetry instruments to the Prometheus registry
// and provides the shared recorder used by outbound gateways.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30} //nolint: gochecknoglobals

// MeterName is the instrumentation scope of every instrument in the service.
const MeterName = "detector"

// Setup registers an OpenTelemetry meter provider exporting to registerer and
// installs it as the global provider. Instruments created before Setup keep
// working because the global provider delegates.
func Setup(registerer prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)

	return mp, nil
}

// GatewayRecorder records the latency and outcome of calls to a third-party API.
type GatewayRecorder struct {
	gateway  string
	duration metric.Float64Histogram
}

// NewGatewayRecorder creates a recorder labeled with gateway (e.g. "vision").
func NewGatewayRecorder(gateway string) *GatewayRecorder {
	hist, err := otel.Meter(MeterName).Float64Histogram(
		"detector_gateway_request_duration_seconds",
		metric.WithDescription("Latency of requests to external analysis services."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &GatewayRecorder{gateway: gateway, duration: hist}
}

// Record observes one call to operation that started at start and ended with err.
func (r *GatewayRecorder) Record(ctx context.Context, operation string, start time.Time, err error) {
	if r == nil || r.duration == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	r.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("gateway", r.gateway),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
