// Package clock defines the external Clock/Ledger capability the membership
// core depends on, plus two implementations: a manually driven clock for
// tests and embedded hosts, and a wall-time round clock.
package clock

import (
	"context"
	"errors"

	"github.com/xraph/membership/types"
)

// ErrTickRegressed is returned when a caller tries to move a clock backwards.
var ErrTickRegressed = errors.New("clock: tick regressed")

// Ledger supplies the current tick and the identity membership fees must be
// paid to. CurrentTick must be monotonically non-decreasing across calls.
// ServiceIdentity is fixed for the lifetime of a deployed instance.
type Ledger interface {
	CurrentTick(ctx context.Context) (types.Tick, error)
	ServiceIdentity() types.Identity
}
