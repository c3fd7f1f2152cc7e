// Package audithook bridges membership lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/membership"
	"github.com/xraph/membership/id"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/plugin"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnInit              = (*Extension)(nil)
	_ plugin.OnShutdown          = (*Extension)(nil)
	_ plugin.OnMemberJoined      = (*Extension)(nil)
	_ plugin.OnJoinRejected      = (*Extension)(nil)
	_ plugin.OnMembershipChecked = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	ID         id.AuditID     `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges membership lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit implements plugin.OnInit.
func (e *Extension) OnInit(ctx context.Context, svc interface{}) error {
	var kv []any
	if s, ok := svc.(*membership.Service); ok {
		kv = append(kv,
			"fee", s.Fee().String(),
			"duration", s.Duration(),
			"receiver", s.ServiceIdentity().String(),
		)
	}
	return e.record(ctx, ActionServiceStarted, SeverityInfo, OutcomeSuccess,
		ResourceService, "", CategorySystem, nil, kv...,
	)
}

// OnShutdown implements plugin.OnShutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionServiceStopped, SeverityInfo, OutcomeSuccess,
		ResourceService, "", CategorySystem, nil,
	)
}

// ──────────────────────────────────────────────────
// Join hooks
// ──────────────────────────────────────────────────

// OnMemberJoined implements plugin.OnMemberJoined.
func (e *Extension) OnMemberJoined(ctx context.Context, rec *record.Record, fact payment.Fact, renewed bool) error {
	action := ActionMemberJoined
	if renewed {
		action = ActionMemberRenewed
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceMember, rec.Member.String(), CategoryMembership, nil,
		"expiration_tick", rec.ExpirationTick.Uint64(),
		"payment_id", fact.Ref(),
		"amount", fact.Amount.String(),
	)
}

// OnJoinRejected implements plugin.OnJoinRejected.
func (e *Extension) OnJoinRejected(ctx context.Context, caller types.Identity, fact payment.Fact, err error) error {
	kv := []any{
		"caller", caller.String(),
		"sender", fact.Sender.String(),
		"receiver", fact.Receiver.String(),
		"amount", fact.Amount.String(),
	}
	if reason, ok := membership.ReasonOf(err); ok {
		kv = append(kv, "violation", string(reason))
	}
	return e.record(ctx, ActionJoinRejected, SeverityWarning, OutcomeFailure,
		ResourcePayment, fact.Ref(), CategoryPayment, err, kv...,
	)
}

// ──────────────────────────────────────────────────
// Query hooks
// ──────────────────────────────────────────────────

// OnMembershipChecked implements plugin.OnMembershipChecked.
func (e *Extension) OnMembershipChecked(ctx context.Context, member types.Identity, state record.State) error {
	return e.record(ctx, ActionMembershipChecked, SeverityInfo, OutcomeSuccess,
		ResourceMember, member.String(), CategoryAccess, nil,
		"state", string(state),
	)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		ID:         id.NewAuditID(),
		Timestamp:  time.Now().UTC(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
