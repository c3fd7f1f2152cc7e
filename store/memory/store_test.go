package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec := &record.Record{Member: "alice", ExpirationTick: 1500}
	if err := s.PutRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.ExpirationTick = 1

	got, err := s.GetRecord(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.ExpirationTick != 1500 {
		t.Fatalf("store shared the caller's record: got %d", got.ExpirationTick)
	}

	got.ExpirationTick = 2
	again, _ := s.GetRecord(ctx, "alice")
	if again.ExpirationTick != 1500 {
		t.Fatalf("store handed out its own record: got %d", again.ExpirationTick)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Ping(ctx); !errors.Is(err, membership.ErrStoreClosed) {
		t.Errorf("Ping: got %v, want ErrStoreClosed", err)
	}
	if _, err := s.GetRecord(ctx, "alice"); !errors.Is(err, membership.ErrStoreClosed) {
		t.Errorf("GetRecord: got %v, want ErrStoreClosed", err)
	}
	if err := s.PutRecord(ctx, &record.Record{Member: "alice"}); !errors.Is(err, membership.ErrStoreClosed) {
		t.Errorf("PutRecord: got %v, want ErrStoreClosed", err)
	}
}
