package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics collects the signup and sweep instruments.
type OTelMetrics struct {
	SignupsCreatedTotal  metric.Int64Counter
	SignupRejectedTotal  metric.Int64Counter
	CheckInsTotal        metric.Int64Counter
	CheckOutsTotal       metric.Int64Counter
	AutoCheckoutsTotal   metric.Int64Counter
	SweepErrorsTotal     metric.Int64Counter
	SweepDurationSeconds metric.Float64Histogram
}

var (
	metrics *OTelMetrics

	meter = otel.Meter("volunteerhub")
)

// InitMetrics registers all instruments. Callers that skip it (tests)
// get no-op recording.
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.SignupsCreatedTotal, err = meter.Int64Counter(
		"signups_created_total",
		metric.WithDescription("Total number of shift signups created"),
		metric.WithUnit("{signup}"),
	)
	if err != nil {
		return err
	}

	m.SignupRejectedTotal, err = meter.Int64Counter(
		"signups_rejected_total",
		metric.WithDescription("Total number of signups rejected by the conflict checker"),
		metric.WithUnit("{signup}"),
	)
	if err != nil {
		return err
	}

	m.CheckInsTotal, err = meter.Int64Counter(
		"check_ins_total",
		metric.WithDescription("Total number of shift check-ins"),
		metric.WithUnit("{signup}"),
	)
	if err != nil {
		return err
	}

	m.CheckOutsTotal, err = meter.Int64Counter(
		"check_outs_total",
		metric.WithDescription("Total number of manual shift check-outs"),
		metric.WithUnit("{signup}"),
	)
	if err != nil {
		return err
	}

	m.AutoCheckoutsTotal, err = meter.Int64Counter(
		"auto_checkouts_total",
		metric.WithDescription("Total number of signups closed by the auto-checkout sweep"),
		metric.WithUnit("{signup}"),
	)
	if err != nil {
		return err
	}

	m.SweepErrorsTotal, err = meter.Int64Counter(
		"sweep_errors_total",
		metric.WithDescription("Total number of per-signup failures inside sweep runs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	m.SweepDurationSeconds, err = meter.Float64Histogram(
		"sweep_duration_seconds",
		metric.WithDescription("Auto-checkout sweep duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

func RecordSignupCreated(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.SignupsCreatedTotal.Add(ctx, 1)
}

// RecordSignupRejected tags the rejection kind: duplicate or overlap.
func RecordSignupRejected(ctx context.Context, kind string) {
	if metrics == nil {
		return
	}
	metrics.SignupRejectedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}

func RecordCheckIn(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.CheckInsTotal.Add(ctx, 1)
}

func RecordCheckOut(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.CheckOutsTotal.Add(ctx, 1)
}

func RecordAutoCheckouts(ctx context.Context, n int64) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.AutoCheckoutsTotal.Add(ctx, n)
}

func RecordSweepErrors(ctx context.Context, n int64) {
	if metrics == nil || n == 0 {
		return
	}
	metrics.SweepErrorsTotal.Add(ctx, n)
}

func RecordSweepDuration(ctx context.Context, seconds float64) {
	if metrics == nil {
		return
	}
	metrics.SweepDurationSeconds.Record(ctx, seconds)
}
