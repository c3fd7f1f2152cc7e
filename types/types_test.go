package types

import (
	"math"
	"testing"
	"time"
)

func TestAmountFormatting(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		major  string
		raw    string
	}{
		{"Fee", Amount(1_000_000), "1.000000", "1000000"},
		{"Just under fee", Amount(999_999), "0.999999", "999999"},
		{"Zero", Amount(0), "0.000000", "0"},
		{"Units", Units(3), "3.000000", "3000000"},
		{"Fractional", Amount(2_500_001), "2.500001", "2500001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.FormatMajor(); got != tt.major {
				t.Errorf("FormatMajor: got %s, want %s", got, tt.major)
			}
			if got := tt.amount.String(); got != tt.raw {
				t.Errorf("String: got %s, want %s", got, tt.raw)
			}
		})
	}
}

func TestAmountPredicates(t *testing.T) {
	if !Amount(0).IsZero() {
		t.Error("expected zero amount to be zero")
	}
	if Amount(1).IsZero() {
		t.Error("expected non-zero amount")
	}
	if Units(1).Uint64() != 1_000_000 {
		t.Errorf("Units(1): got %d, want 1000000", Units(1).Uint64())
	}
}

func TestTickAdd(t *testing.T) {
	tests := []struct {
		name string
		tick Tick
		d    uint64
		want Tick
		ok   bool
	}{
		{"Simple", 500, 1000, 1500, true},
		{"Zero duration", 42, 0, 42, true},
		{"At limit", Tick(math.MaxUint64 - 1000), 1000, Tick(math.MaxUint64), true},
		{"Overflow", Tick(math.MaxUint64 - 999), 1000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.tick.Add(tt.d)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("sum: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTickBefore(t *testing.T) {
	if !Tick(1499).Before(1500) {
		t.Error("1499 should be before 1500")
	}
	if Tick(1500).Before(1500) {
		t.Error("equal ticks are not before each other")
	}
}

func TestIdentity(t *testing.T) {
	if !Identity("").IsZero() {
		t.Error("empty identity should be zero")
	}
	if Identity("alice").String() != "alice" {
		t.Error("identity string mismatch")
	}
	if Identity("Alice") == Identity("alice") {
		t.Error("identities must compare exactly")
	}
}

func TestEntityTouch(t *testing.T) {
	e := NewEntity()
	if !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Fatal("new entity should have equal timestamps")
	}
	before := e.UpdatedAt
	time.Sleep(time.Millisecond)
	e.Touch()
	if !e.UpdatedAt.After(before) {
		t.Error("Touch should advance UpdatedAt")
	}
	if e.UpdatedAt.Before(e.CreatedAt) {
		t.Error("UpdatedAt before CreatedAt")
	}
}
