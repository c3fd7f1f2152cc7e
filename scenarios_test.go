package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/membership"
	"github.com/xraph/membership/payment"
)

func TestScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("AliceJoinsAt500", func(t *testing.T) {
		svc, clk, _ := newService(t, 500)

		ok, err := svc.Join(ctx, "alice", payment.Fact{
			Sender:   "alice",
			Receiver: service,
			Amount:   1_000_000,
		}, "alice")
		if err != nil || !ok {
			t.Fatalf("Join = %v, %v", ok, err)
		}
		if got := mustExpiration(t, svc, "alice"); got != 1500 {
			t.Fatalf("GetExpiration = %d, want 1500", got)
		}

		_ = clk.Set(1499)
		if !mustIsMember(t, svc, "alice") {
			t.Error("alice should be a member at tick 1499")
		}
		_ = clk.Set(1500)
		if mustIsMember(t, svc, "alice") {
			t.Error("alice should not be a member at tick 1500")
		}
	})

	t.Run("BobUnderpays", func(t *testing.T) {
		svc, _, _ := newService(t, 500)

		_, err := svc.Join(ctx, "bob", payment.Fact{
			Sender:   "bob",
			Receiver: service,
			Amount:   999_999,
		}, "bob")
		if !errors.Is(err, membership.ErrAmountMismatch) {
			t.Fatalf("err = %v, want ErrAmountMismatch", err)
		}
		if got := mustExpiration(t, svc, "bob"); got != 0 {
			t.Errorf("GetExpiration = %d, want 0", got)
		}
	})

	t.Run("CarolRenewsEarly", func(t *testing.T) {
		svc, clk, _ := newService(t, 100)

		fact := payment.Fact{Sender: "carol", Receiver: service, Amount: 1_000_000}
		if _, err := svc.Join(ctx, "carol", fact, "carol"); err != nil {
			t.Fatal(err)
		}
		if got := mustExpiration(t, svc, "carol"); got != 1100 {
			t.Fatalf("GetExpiration = %d, want 1100", got)
		}

		_ = clk.Set(1050)
		if _, err := svc.Join(ctx, "carol", fact, "carol"); err != nil {
			t.Fatal(err)
		}
		if got := mustExpiration(t, svc, "carol"); got != 2050 {
			t.Errorf("GetExpiration = %d, want 2050", got)
		}
	})
}
