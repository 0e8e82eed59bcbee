// Package observe holds the OpenTelemetry metric instruments of the map
// engine. A package-level default backed by the global meter provider is
// available through [DefaultMetrics]; tests should call [NewMetrics] with
// their own provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "mapengine"

// Metrics holds all metric instruments. The underlying OTel types are safe
// for concurrent use.
type Metrics struct {
	// InitDuration tracks how long building a map context takes.
	InitDuration metric.Float64Histogram

	// RenderDuration tracks preview and tile rendering. Attributes:
	//   attribute.String("kind", "tile"|"preview"), attribute.String("mode", ...)
	RenderDuration metric.Float64Histogram

	// Queries counts engine operations. Attributes:
	//   attribute.String("op", ...), attribute.String("status", "ok"|"error")
	Queries metric.Int64Counter

	// SkippedFiles counts state files dropped during a load.
	SkippedFiles metric.Int64Counter
}

// latencyBuckets are histogram boundaries in seconds, from a cached tile
// render up to a full world load.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1, 5, 15, 60,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.InitDuration, err = m.Float64Histogram("mapengine.init.duration",
		metric.WithDescription("Time to build and install a map context."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("mapengine.render.duration",
		metric.WithDescription("Time to render a preview or a tile."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Queries, err = m.Int64Counter("mapengine.queries",
		metric.WithDescription("Engine operations by name and status."),
	); err != nil {
		return nil, err
	}
	if met.SkippedFiles, err = m.Int64Counter("mapengine.skipped_files",
		metric.WithDescription("State files skipped because they failed to parse."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on
// [otel.GetMeterProvider].
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordQuery counts one operation.
func (m *Metrics) RecordQuery(ctx context.Context, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Queries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
}

// RecordRender records the duration of a render that started at start.
func (m *Metrics) RecordRender(ctx context.Context, kind, mode string, start time.Time) {
	m.RenderDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("mode", mode),
	))
}
