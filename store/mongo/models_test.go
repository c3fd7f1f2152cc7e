package mongo

import (
	"testing"
	"time"

	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

func TestRecordModelRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []types.Tick{0, 1000, 1<<63 + 12345, 1<<64 - 1}

	for _, tick := range tests {
		rec := &record.Record{
			Entity:         types.Entity{CreatedAt: now, UpdatedAt: now},
			Member:         "alice",
			ExpirationTick: tick,
		}
		got, err := fromRecordModel(toRecordModel(rec))
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if got.ExpirationTick != tick || got.Member != rec.Member {
			t.Errorf("tick %d: got %+v", tick, got)
		}
	}
}

func TestFromRecordModelBadTick(t *testing.T) {
	_, err := fromRecordModel(&recordModel{Member: "alice", ExpirationTick: "abc"})
	if err == nil {
		t.Fatal("expected error")
	}
}
