package membership

import (
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// Re-export common types for convenience so users don't have to import the
// types, record and payment packages.

// Identity is re-exported from types package.
type Identity = types.Identity

// Tick is re-exported from types package.
type Tick = types.Tick

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Record is re-exported from record package.
type Record = record.Record

// State is re-exported from record package.
type State = record.State

// PaymentFact is re-exported from payment package.
type PaymentFact = payment.Fact

// Re-export lifecycle states
const (
	StateNeverJoined = record.StateNeverJoined
	StateActive      = record.StateActive
	StateExpired     = record.StateExpired
)

// Re-export constructors
var (
	Units     = types.Units
	NewEntity = types.NewEntity
)
