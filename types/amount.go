package types

import (
	"fmt"
	"strconv"
)

// AmountDecimals is the number of decimal places between the base fee unit
// and the display unit (1 unit = 1_000_000 base units).
const AmountDecimals = 6

// Amount is a payment amount in the smallest fee unit.
// All arithmetic is integer-only.
//
// Examples:
//   - Amount(1_000_000) = "1.000000"
//   - Amount(999_999)   = "0.999999"
type Amount uint64

// Units creates an Amount from whole display units.
func Units(n uint64) Amount {
	return Amount(n * pow10(AmountDecimals))
}

// Uint64 returns the raw base-unit value.
func (a Amount) Uint64() uint64 { return uint64(a) }

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// FormatMajor returns the display string without unit suffix.
// For example "1.000000" for Amount(1_000_000).
func (a Amount) FormatMajor() string {
	divisor := pow10(AmountDecimals)
	major := uint64(a) / divisor
	minor := uint64(a) % divisor

	format := fmt.Sprintf("%%d.%%0%dd", AmountDecimals)
	return fmt.Sprintf(format, major, minor)
}

// String returns the base-unit value, which is what payment facts carry.
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
