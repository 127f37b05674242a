package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	submissionsReceived  metric.Int64Counter
	submissionsRejected  metric.Int64Counter
	submissionsListed    metric.Int64Counter
	statusUpdates        metric.Int64Counter
	submissionsDeleted   metric.Int64Counter
	notificationsSent    metric.Int64Counter
	notificationsFailed  metric.Int64Counter
	databaseQueryLatency metric.Float64Histogram
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.submissionsReceived, err = meter.Int64Counter(
		"contact_service.submissions.received",
		metric.WithDescription("Total number of contact submissions accepted"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsRejected, err = meter.Int64Counter(
		"contact_service.submissions.rejected",
		metric.WithDescription("Total number of contact submissions rejected by validation"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsListed, err = meter.Int64Counter(
		"contact_service.submissions.list_viewed",
		metric.WithDescription("Total number of times the submissions list was fetched"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.statusUpdates, err = meter.Int64Counter(
		"contact_service.submissions.status_updated",
		metric.WithDescription("Total number of submission status updates"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsDeleted, err = meter.Int64Counter(
		"contact_service.submissions.deleted",
		metric.WithDescription("Total number of submissions deleted"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsSent, err = meter.Int64Counter(
		"contact_service.notifications.sent",
		metric.WithDescription("Total number of notifications dispatched"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsFailed, err = meter.Int64Counter(
		"contact_service.notifications.failed",
		metric.WithDescription("Total number of notification dispatch failures"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s
	m.databaseQueryLatency, err = meter.Float64Histogram(
		"contact_service.database.query_duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
		),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordSubmissionReceived(ctx context.Context) {
	if m != nil && m.submissionsReceived != nil {
		m.submissionsReceived.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSubmissionRejected(ctx context.Context, reason string) {
	if m != nil && m.submissionsRejected != nil {
		m.submissionsRejected.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordListViewed(ctx context.Context) {
	if m != nil && m.submissionsListed != nil {
		m.submissionsListed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStatusUpdated(ctx context.Context, status string) {
	if m != nil && m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)))
	}
}

func (m *Metrics) RecordSubmissionDeleted(ctx context.Context) {
	if m != nil && m.submissionsDeleted != nil {
		m.submissionsDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordNotificationSent(ctx context.Context) {
	if m != nil && m.notificationsSent != nil {
		m.notificationsSent.Add(ctx, 1)
	}
}

func (m *Metrics) RecordNotificationFailed(ctx context.Context) {
	if m != nil && m.notificationsFailed != nil {
		m.notificationsFailed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	if m == nil || m.databaseQueryLatency == nil {
		return
	}
	m.databaseQueryLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", table),
			attribute.Bool("error", err != nil),
		))
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
