package membership_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/membership"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/store/memory"
)

// TestDocumentationExamples verifies that the package documentation examples
// run as written.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// The ledger supplies the current tick and the receiving identity.
		ledger := clock.NewManual("membership-service", 500)

		svc := membership.New(store, ledger,
			membership.WithLogger(slog.Default()),
			membership.WithFee(membership.DefaultFee),
			membership.WithDuration(membership.DefaultDuration),
		)

		ctx := context.Background()
		if err := svc.Initialize(ctx); err != nil {
			t.Fatal(err)
		}
		defer svc.Close()

		joined, err := svc.Join(ctx, "alice", payment.Fact{
			Sender:   "alice",
			Receiver: svc.ServiceIdentity(),
			Amount:   svc.Fee(),
		}, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if !joined {
			t.Fatal("expected join to succeed")
		}

		active, err := svc.IsMember(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if !active {
			t.Error("alice should be a member")
		}

		exp, err := svc.GetExpiration(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if exp != 1500 {
			t.Errorf("expiration = %d, want 1500", exp)
		}
	})
}
