package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/xraph/membership"
	audithook "github.com/xraph/membership/audit_hook"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/id"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/store/memory"
)

type captured struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (c *captured) recorder() audithook.Recorder {
	return audithook.RecorderFunc(func(_ context.Context, evt *audithook.AuditEvent) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, evt)
		return nil
	})
}

func (c *captured) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

func (c *captured) find(action string) *audithook.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.Action == action {
			return e
		}
	}
	return nil
}

func newService(t *testing.T, ext *audithook.Extension) *membership.Service {
	t.Helper()
	svc := membership.New(memory.New(), clock.NewManual("svc", 10), membership.WithPlugin(ext))
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestAuditTrail(t *testing.T) {
	c := &captured{}
	svc := newService(t, audithook.New(c.recorder()))
	ctx := context.Background()

	fact := payment.Fact{ID: id.NewPaymentID(), Sender: "alice", Receiver: "svc", Amount: membership.DefaultFee}
	if _, err := svc.Join(ctx, "alice", fact, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Join(ctx, "alice", fact, "alice"); err != nil {
		t.Fatal(err)
	}
	bad := fact
	bad.Receiver = "elsewhere"
	if _, err := svc.Join(ctx, "alice", bad, "alice"); !errors.Is(err, membership.ErrReceiverMismatch) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.IsMember(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		audithook.ActionServiceStarted,
		audithook.ActionMemberJoined,
		audithook.ActionMemberRenewed,
		audithook.ActionJoinRejected,
		audithook.ActionMembershipChecked,
		audithook.ActionServiceStopped,
	}
	got := c.actions()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	joined := c.find(audithook.ActionMemberJoined)
	if joined.ResourceID != "alice" || joined.Metadata["expiration_tick"] != uint64(1010) {
		t.Errorf("joined event = %+v", joined)
	}
	if joined.Metadata["payment_id"] != fact.ID.String() {
		t.Errorf("payment_id = %v", joined.Metadata["payment_id"])
	}
	if joined.ID.Prefix() != id.PrefixAudit {
		t.Errorf("event id prefix = %q", joined.ID.Prefix())
	}

	rejected := c.find(audithook.ActionJoinRejected)
	if rejected.Outcome != audithook.OutcomeFailure || rejected.Severity != audithook.SeverityWarning {
		t.Errorf("rejected event = %+v", rejected)
	}
	if rejected.Metadata["violation"] != string(membership.ReasonReceiverMismatch) {
		t.Errorf("violation = %v", rejected.Metadata["violation"])
	}
	if rejected.Reason == "" {
		t.Error("rejected event has no reason")
	}

	started := c.find(audithook.ActionServiceStarted)
	if started.Metadata["receiver"] != "svc" {
		t.Errorf("started metadata = %v", started.Metadata)
	}
}

func TestEnabledActions(t *testing.T) {
	c := &captured{}
	svc := newService(t, audithook.New(c.recorder(), audithook.WithEnabledActions(audithook.ActionJoinRejected)))

	fact := payment.Fact{Sender: "alice", Receiver: "svc", Amount: 1}
	_, _ = svc.Join(context.Background(), "alice", fact, "alice")
	_, _ = svc.IsMember(context.Background(), "alice")

	got := c.actions()
	if len(got) != 1 || got[0] != audithook.ActionJoinRejected {
		t.Errorf("actions = %v", got)
	}
}

func TestDisabledActions(t *testing.T) {
	c := &captured{}
	svc := newService(t, audithook.New(c.recorder(),
		audithook.WithDisabledActions(audithook.ActionMembershipChecked, audithook.ActionServiceStarted),
	))

	_, _ = svc.IsMember(context.Background(), "alice")
	if got := c.actions(); len(got) != 0 {
		t.Errorf("actions = %v, want none", got)
	}
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	})
	svc := newService(t, audithook.New(failing))

	fact := payment.Fact{Sender: "alice", Receiver: "svc", Amount: membership.DefaultFee}
	ok, err := svc.Join(context.Background(), "alice", fact, "alice")
	if err != nil || !ok {
		t.Errorf("Join = %v, %v", ok, err)
	}
}
