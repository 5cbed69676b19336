package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RefreshMeterName is the instrumentation scope of refresh metrics.
const RefreshMeterName = "github.com/giljurha/Airvisual/internal/refresh"

// RefreshMetrics holds the instruments recorded by the refresh controller.
type RefreshMetrics struct {
	refreshes metric.Int64Counter
	failures  metric.Int64Counter
	stale     metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewRefreshMetrics creates refresh instruments on meter. A nil meter uses
// the global meter provider.
func NewRefreshMetrics(meter metric.Meter) (*RefreshMetrics, error) {
	if meter == nil {
		meter = otel.Meter(RefreshMeterName)
	}

	refreshes, err := meter.Int64Counter(
		"screen.refresh.total",
		metric.WithDescription("Number of refreshes started"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"screen.refresh.failures",
		metric.WithDescription("Number of refresh failures by reason"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	stale, err := meter.Int64Counter(
		"screen.refresh.stale_dropped",
		metric.WithDescription("Number of results dropped because a newer refresh started"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"screen.refresh.duration",
		metric.WithDescription("Duration of finished refreshes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RefreshMetrics{
		refreshes: refreshes,
		failures:  failures,
		stale:     stale,
		duration:  duration,
	}, nil
}

// RecordStart counts a started refresh.
func (m *RefreshMetrics) RecordStart(ctx context.Context, trigger string) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("refresh.trigger", trigger)))
}

// RecordFailure counts a failure by reason.
func (m *RefreshMetrics) RecordFailure(ctx context.Context, reason string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("refresh.reason", reason)))
}

// RecordStaleDrop counts a dropped stale result.
func (m *RefreshMetrics) RecordStaleDrop(ctx context.Context, event string) {
	m.stale.Add(ctx, 1, metric.WithAttributes(attribute.String("refresh.event", event)))
}

// RecordFinished records the duration of a finished refresh.
func (m *RefreshMetrics) RecordFinished(ctx context.Context, outcome string, d time.Duration) {
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("refresh.outcome", outcome)))
}
