// Package observability provides a metrics extension for the membership
// service that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"strconv"

	"github.com/xraph/membership"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/plugin"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnMemberJoined      = (*MetricsExtension)(nil)
	_ plugin.OnJoinRejected      = (*MetricsExtension)(nil)
	_ plugin.OnMembershipChecked = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a plugin to automatically track membership metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Join metrics
	Joined        Counter
	Renewed       Counter
	Rejected      Counter
	PaymentAmount Histogram

	// Rejections by failed precondition
	RejectedSender   Counter
	RejectedReceiver Counter
	RejectedAmount   Counter
	RejectedMember   Counter

	// Query metrics
	Checks            Counter
	ChecksActive      Counter
	ChecksExpired     Counter
	ChecksNeverJoined Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use NewPrometheusFactory outside forge.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Join metrics
		Joined:        factory.Counter("membership.joined"),
		Renewed:       factory.Counter("membership.renewed"),
		Rejected:      factory.Counter("membership.rejected"),
		PaymentAmount: factory.Histogram("membership.payment.amount"),

		// Rejections
		RejectedSender:   factory.Counter("membership.rejected.sender_mismatch"),
		RejectedReceiver: factory.Counter("membership.rejected.receiver_mismatch"),
		RejectedAmount:   factory.Counter("membership.rejected.amount_mismatch"),
		RejectedMember:   factory.Counter("membership.rejected.member_mismatch"),

		// Query metrics
		Checks:            factory.Counter("membership.checks"),
		ChecksActive:      factory.Counter("membership.checks.active"),
		ChecksExpired:     factory.Counter("membership.checks.expired"),
		ChecksNeverJoined: factory.Counter("membership.checks.never_joined"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Join hooks
// ──────────────────────────────────────────────────

// OnMemberJoined implements plugin.OnMemberJoined.
func (m *MetricsExtension) OnMemberJoined(_ context.Context, _ *record.Record, fact payment.Fact, renewed bool) error {
	if renewed {
		m.Renewed.Inc()
	} else {
		m.Joined.Inc()
	}
	m.PaymentAmount.Observe(majorUnits(fact.Amount))
	return nil
}

// OnJoinRejected implements plugin.OnJoinRejected.
func (m *MetricsExtension) OnJoinRejected(_ context.Context, _ types.Identity, fact payment.Fact, err error) error {
	m.Rejected.Inc()
	m.PaymentAmount.Observe(majorUnits(fact.Amount))

	reason, _ := membership.ReasonOf(err)
	switch reason {
	case membership.ReasonSenderMismatch:
		m.RejectedSender.Inc()
	case membership.ReasonReceiverMismatch:
		m.RejectedReceiver.Inc()
	case membership.ReasonAmountMismatch:
		m.RejectedAmount.Inc()
	case membership.ReasonMemberMismatch:
		m.RejectedMember.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Query hooks
// ──────────────────────────────────────────────────

// OnMembershipChecked implements plugin.OnMembershipChecked.
func (m *MetricsExtension) OnMembershipChecked(_ context.Context, _ types.Identity, state record.State) error {
	m.Checks.Inc()
	switch state {
	case record.StateActive:
		m.ChecksActive.Inc()
	case record.StateExpired:
		m.ChecksExpired.Inc()
	case record.StateNeverJoined:
		m.ChecksNeverJoined.Inc()
	}
	return nil
}

func majorUnits(a types.Amount) float64 {
	f, err := strconv.ParseFloat(a.FormatMajor(), 64)
	if err != nil {
		return 0
	}
	return f
}
