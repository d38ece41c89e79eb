// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	refreshCounter  otelmetric.Int64Counter
	refreshDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	refreshCounter, _ := meter.Int64Counter(
		"lists.refreshes",
		otelmetric.WithDescription("Number of list refreshes processed"),
	)

	refreshDuration, _ := meter.Float64Histogram(
		"lists.refresh.duration",
		otelmetric.WithDescription("List refresh duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		refreshCounter:  refreshCounter,
		refreshDuration: refreshDuration,
	}
}

func (o *Observability) RecordRefresh(ctx context.Context, list, outcome string) {
	if o.refreshCounter != nil {
		o.refreshCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("list", list),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordRefreshDuration(ctx context.Context, list string, duration time.Duration) {
	if o.refreshDuration != nil {
		o.refreshDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("list", list),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
