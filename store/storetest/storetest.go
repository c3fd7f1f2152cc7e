// Package storetest provides a conformance suite that every store backend
// runs against its own implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/xraph/membership"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/types"
)

// Factory returns a fresh, migrated, empty store.
type Factory func(t *testing.T) store.Store

// Run exercises the store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetRecord(context.Background(), "nobody")
		if !errors.Is(err, membership.ErrMemberNotFound) {
			t.Fatalf("got %v, want ErrMemberNotFound", err)
		}
	})

	t.Run("PutThenGet", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rec := &record.Record{Entity: types.NewEntity(), Member: "alice", ExpirationTick: 1500}
		if err := s.PutRecord(ctx, rec); err != nil {
			t.Fatal(err)
		}

		got, err := s.GetRecord(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if got.Member != "alice" || got.ExpirationTick != 1500 {
			t.Errorf("got %+v", got)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt was not persisted")
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, exp := range []types.Tick{1100, 2050, 40} {
			if err := s.PutRecord(ctx, &record.Record{Entity: types.NewEntity(), Member: "carol", ExpirationTick: exp}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := s.GetRecord(ctx, "carol")
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpirationTick != 40 {
			t.Errorf("got %d, want 40 (last write wins)", got.ExpirationTick)
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rec := &record.Record{Entity: types.NewEntity(), Member: "dave", ExpirationTick: 77}
		for i := 0; i < 2; i++ {
			if err := s.PutRecord(ctx, rec); err != nil {
				t.Fatal(err)
			}
		}
		got, err := s.GetRecord(ctx, "dave")
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpirationTick != 77 {
			t.Errorf("got %d, want 77", got.ExpirationTick)
		}
	})

	t.Run("ExactIdentityMatch", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		if err := s.PutRecord(ctx, &record.Record{Entity: types.NewEntity(), Member: "Alice", ExpirationTick: 9}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetRecord(ctx, "alice"); !errors.Is(err, membership.ErrMemberNotFound) {
			t.Errorf("identities must not be normalized, got %v", err)
		}
	})

	t.Run("LargeTick", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		big := types.Tick(1<<63 + 12345)
		if err := s.PutRecord(ctx, &record.Record{Entity: types.NewEntity(), Member: "erin", ExpirationTick: big}); err != nil {
			t.Fatal(err)
		}
		got, err := s.GetRecord(ctx, "erin")
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpirationTick != big {
			t.Errorf("got %d, want %d", got.ExpirationTick, big)
		}
	})

	t.Run("ConcurrentDistinctMembers", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				member := types.Identity(fmt.Sprintf("member-%d", i))
				errs <- s.PutRecord(ctx, &record.Record{Entity: types.NewEntity(), Member: member, ExpirationTick: types.Tick(i + 1)})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatal(err)
			}
		}

		for i := 0; i < 20; i++ {
			got, err := s.GetRecord(ctx, types.Identity(fmt.Sprintf("member-%d", i)))
			if err != nil {
				t.Fatal(err)
			}
			if got.ExpirationTick != types.Tick(i+1) {
				t.Errorf("member-%d: got %d, want %d", i, got.ExpirationTick, i+1)
			}
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Fatal(err)
		}
	})
}
