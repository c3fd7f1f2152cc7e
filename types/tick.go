package types

import "math"

// Tick is a monotonically non-decreasing counter supplied by an external
// clock or ledger (a ledger round, for example). The membership core reads
// ticks but never advances them.
type Tick uint64

// Uint64 returns the raw counter value.
func (t Tick) Uint64() uint64 { return uint64(t) }

// Add returns t+d and false if the sum would overflow.
func (t Tick) Add(d uint64) (Tick, bool) {
	if uint64(t) > math.MaxUint64-d {
		return 0, false
	}
	return t + Tick(d), true
}

// Before reports whether t is strictly before other.
func (t Tick) Before(other Tick) bool { return t < other }
