// Package record defines the per-identity membership record and the
// lifecycle states derived from it.
package record

import (
	"github.com/xraph/membership/types"
)

// State is the lifecycle state of one identity's membership.
//
//	NeverJoined --Join--> Active
//	Active      --Join--> Active   (refresh)
//	Active      --tick reaches expiration--> Expired (observed on query)
//	Expired     --Join--> Active
//
// No transition returns to NeverJoined.
type State string

const (
	StateNeverJoined State = "never_joined"
	StateActive      State = "active"
	StateExpired     State = "expired"
)

// Record is the stored membership state for one identity. It is written
// wholesale on every successful join and never deleted.
type Record struct {
	types.Entity
	Member         types.Identity `json:"member"`
	ExpirationTick types.Tick     `json:"expiration_tick"`
}

// ActiveAt reports whether the membership is active at tick now.
// Equality with the expiration tick is inactive.
func (r *Record) ActiveAt(now types.Tick) bool {
	return r != nil && now < r.ExpirationTick
}

// StateAt derives the lifecycle state at tick now. A nil record is
// NeverJoined.
func (r *Record) StateAt(now types.Tick) State {
	switch {
	case r == nil:
		return StateNeverJoined
	case r.ActiveAt(now):
		return StateActive
	default:
		return StateExpired
	}
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
