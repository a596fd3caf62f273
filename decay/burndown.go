// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package decay

import (
	"math/big"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/reverts"
)

// Burndown linearly decays a quantity toward zero over a configured window.
// Bond markets use it for outstanding discount debt and market-wide principal
// vesting; the burndown staking mode uses it for the displayed locked balance.
//
// The decaying quantity and the clock restart whenever new value is folded in;
// the already-decayed portion is released first so no progress is lost.
// A zero period disables decay: everything is released immediately.
type Burndown struct {
	value  *big.Int // amount still subject to decay
	start  uint64   // unix seconds of the last fold-in
	period uint64   // decay window in seconds
}

// New creates an empty burndown over the given window.
func New(period uint64) *Burndown {
	return &Burndown{
		value:  new(big.Int),
		period: period,
	}
}

// Period returns the decay window.
func (b *Burndown) Period() uint64 {
	return b.period
}

// Start returns the timestamp of the last fold-in.
func (b *Burndown) Start() uint64 {
	return b.start
}

// Value returns the amount subject to decay as of the last settle.
func (b *Burndown) Value() *big.Int {
	return fixed.Clone(b.value)
}

// Remaining computes the still-locked quantity at the given time:
// value * max(0, period - (now - start)) / period, truncated.
func (b *Burndown) Remaining(now uint64) *big.Int {
	if b.period == 0 || b.value.Sign() == 0 {
		return new(big.Int)
	}
	if now <= b.start {
		return fixed.Clone(b.value)
	}
	elapsed := now - b.start
	if elapsed >= b.period {
		return new(big.Int)
	}
	left := new(big.Int).SetUint64(b.period - elapsed)
	return fixed.MulDiv(b.value, left, new(big.Int).SetUint64(b.period))
}

// Released computes the already-decayed quantity at the given time.
func (b *Burndown) Released(now uint64) *big.Int {
	return new(big.Int).Sub(b.value, b.Remaining(now))
}

// Settle releases the decayed portion and restarts the clock, returning the
// released amount. Settling twice at the same time releases nothing the
// second time.
func (b *Burndown) Settle(now uint64) *big.Int {
	released := b.Released(now)
	b.value.Sub(b.value, released)
	b.start = now
	return released
}

// Add settles, then folds new value in under the restarted clock. This is the
// weighted-average consolidation: the surviving locked amount and the new
// amount share a single window starting at now.
func (b *Burndown) Add(now uint64, amount *big.Int) *big.Int {
	released := b.Settle(now)
	b.value.Add(b.value, amount)
	return released
}

// Remove settles, then deducts amount from the still-locked quantity. Used for
// early exits that forfeit locked value immediately instead of waiting out the
// decay. Returns the released amount from the settle.
func (b *Burndown) Remove(now uint64, amount *big.Int) (*big.Int, error) {
	released := b.Released(now)
	remaining := new(big.Int).Sub(b.value, released)
	if amount.Cmp(remaining) > 0 {
		return nil, reverts.InsufficientBalance("remove exceeds locked value")
	}
	b.value.Sub(remaining, amount)
	b.start = now
	return released, nil
}
