package clock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/xraph/membership/types"
)

var _ Ledger = (*Rounds)(nil)

// Rounds derives ticks from wall time: one tick per period since genesis,
// offset by the tick the ledger had at genesis. A backwards jump of the wall
// clock never produces a smaller tick than one already handed out.
type Rounds struct {
	genesis     time.Time
	genesisTick types.Tick
	period      time.Duration
	receiver    types.Identity
	now         func() time.Time

	highWater atomic.Uint64
}

// RoundsOption configures a Rounds clock.
type RoundsOption func(*Rounds)

// WithNow overrides the wall-clock source.
func WithNow(now func() time.Time) RoundsOption {
	return func(r *Rounds) { r.now = now }
}

// WithGenesisTick sets the tick reported at genesis.
func WithGenesisTick(t types.Tick) RoundsOption {
	return func(r *Rounds) { r.genesisTick = t }
}

// NewRounds creates a wall-time clock. period must be positive.
func NewRounds(receiver types.Identity, genesis time.Time, period time.Duration, opts ...RoundsOption) (*Rounds, error) {
	if period <= 0 {
		return nil, errors.New("clock: round period must be positive")
	}
	r := &Rounds{
		genesis:  genesis,
		period:   period,
		receiver: receiver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CurrentTick implements Ledger.
func (r *Rounds) CurrentTick(ctx context.Context) (types.Tick, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t := r.genesisTick
	if elapsed := r.now().Sub(r.genesis); elapsed > 0 {
		t += types.Tick(elapsed / r.period)
	}

	for {
		hw := r.highWater.Load()
		if uint64(t) <= hw {
			return types.Tick(hw), nil
		}
		if r.highWater.CompareAndSwap(hw, uint64(t)) {
			return t, nil
		}
	}
}

// ServiceIdentity implements Ledger.
func (r *Rounds) ServiceIdentity() types.Identity { return r.receiver }

// Period returns the wall-clock length of one tick.
func (r *Rounds) Period() time.Duration { return r.period }
