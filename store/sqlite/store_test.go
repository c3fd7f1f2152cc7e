package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xraph/grove/driver"

	"github.com/xraph/membership"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/store/storetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	// A single connection keeps writers from racing for the database lock.
	s, err := Open(ctx, filepath.Join(t.TempDir(), "membership.db"), driver.WithPoolSize(1))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestStore(t)
	})
}

func TestMigrateTwice(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestServiceOnSQLite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	ledger := clock.NewManual("svc", 1000)

	svc := membership.New(s, ledger)
	if err := svc.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	fact := payment.Fact{Sender: "alice", Receiver: "svc", Amount: membership.DefaultFee}
	if _, err := svc.Join(ctx, "alice", fact, "alice"); err != nil {
		t.Fatal(err)
	}

	exp, err := svc.GetExpiration(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if exp != 2000 {
		t.Errorf("expiration: got %d, want 2000", exp)
	}

	active, err := svc.IsMember(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Error("alice should be active at tick 1000")
	}

	_ = ledger.Set(2000)
	active, err = svc.IsMember(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if active {
		t.Error("alice should be inactive at her expiration tick")
	}
}
