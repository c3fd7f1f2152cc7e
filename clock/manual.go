package clock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/xraph/membership/types"
)

var _ Ledger = (*Manual)(nil)

// Manual is a Ledger whose tick only moves when told to.
type Manual struct {
	tick     atomic.Uint64
	receiver types.Identity
}

// NewManual creates a Manual clock at the given tick, receiving fees at
// receiver.
func NewManual(receiver types.Identity, start types.Tick) *Manual {
	m := &Manual{receiver: receiver}
	m.tick.Store(uint64(start))
	return m
}

// CurrentTick implements Ledger.
func (m *Manual) CurrentTick(_ context.Context) (types.Tick, error) {
	return types.Tick(m.tick.Load()), nil
}

// ServiceIdentity implements Ledger.
func (m *Manual) ServiceIdentity() types.Identity { return m.receiver }

// Set moves the clock to t. Moving backwards returns ErrTickRegressed and
// leaves the clock unchanged.
func (m *Manual) Set(t types.Tick) error {
	for {
		cur := m.tick.Load()
		if uint64(t) < cur {
			return fmt.Errorf("%w: %d -> %d", ErrTickRegressed, cur, t)
		}
		if m.tick.CompareAndSwap(cur, uint64(t)) {
			return nil
		}
	}
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (m *Manual) Advance(n uint64) types.Tick {
	return types.Tick(m.tick.Add(n))
}
