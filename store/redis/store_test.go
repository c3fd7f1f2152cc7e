package redis

import (
	"testing"
	"time"

	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

func TestHashRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	rec := &record.Record{
		Entity:         types.Entity{CreatedAt: now, UpdatedAt: now.Add(time.Hour)},
		Member:         "alice",
		ExpirationTick: types.Tick(1<<64 - 1),
	}

	h := toHash(rec)
	fields := make(map[string]string, len(h))
	for k, v := range h {
		fields[k] = v.(string)
	}

	got, err := fromHash(fields)
	if err != nil {
		t.Fatal(err)
	}
	if got.Member != rec.Member || got.ExpirationTick != rec.ExpirationTick {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) || !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps: got %v/%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestFromHashRejectsBadTick(t *testing.T) {
	_, err := fromHash(map[string]string{fieldMember: "alice", fieldExpiration: "-1"})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestKeyPrefix(t *testing.T) {
	s := New(nil, WithKeyPrefix("test:"))
	if got := s.key("alice"); got != "test:alice" {
		t.Errorf("got %q", got)
	}
	if got := New(nil).key("bob"); got != DefaultKeyPrefix+"bob" {
		t.Errorf("got %q", got)
	}
}
