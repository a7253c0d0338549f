package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics

	contactsSubmitted     metric.Int64Counter
	applicationsSubmitted metric.Int64Counter
	duplicatesRejected    metric.Int64Counter
	statusUpdates         metric.Int64Counter
	resumesDownloaded     metric.Int64Counter
	eventsFailed          metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Messaging: messaging}

	m.contactsSubmitted, err = meter.Int64Counter(
		"site.contacts.submitted",
		metric.WithDescription("Contact messages accepted"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	m.applicationsSubmitted, err = meter.Int64Counter(
		"site.applications.submitted",
		metric.WithDescription("Job applications accepted"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.duplicatesRejected, err = meter.Int64Counter(
		"site.submissions.duplicates",
		metric.WithDescription("Submissions rejected as duplicates"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.statusUpdates, err = meter.Int64Counter(
		"site.submissions.status_updates",
		metric.WithDescription("Status transitions applied by admins"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	m.resumesDownloaded, err = meter.Int64Counter(
		"site.resumes.downloaded",
		metric.WithDescription("Resumes served for download"),
		metric.WithUnit("{download}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsFailed, err = meter.Int64Counter(
		"site.events.failed",
		metric.WithDescription("Submission events that could not be published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordContactSubmitted(ctx context.Context) {
	if m != nil && m.contactsSubmitted != nil {
		m.contactsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context, withResume bool) {
	if m != nil && m.applicationsSubmitted != nil {
		m.applicationsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("resume", withResume)))
	}
}

func (m *Metrics) RecordDuplicate(ctx context.Context, kind string) {
	if m != nil && m.duplicatesRejected != nil {
		m.duplicatesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *Metrics) RecordStatusUpdate(ctx context.Context, kind, status string) {
	if m != nil && m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		))
	}
}

func (m *Metrics) RecordResumeDownloaded(ctx context.Context) {
	if m != nil && m.resumesDownloaded != nil {
		m.resumesDownloaded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEventFailed(ctx context.Context, kind string) {
	if m != nil && m.eventsFailed != nil {
		m.eventsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// DB returns the database collectors, tolerating a nil receiver.
func (m *Metrics) DB() *DatabaseMetrics {
	if m == nil {
		return nil
	}
	return m.Database
}

// Events returns the messaging collectors, tolerating a nil receiver.
func (m *Metrics) Events() *MessagingMetrics {
	if m == nil {
		return nil
	}
	return m.Messaging
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Messaging: &MessagingMetrics{}}
}
