// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
)

// Accumulator is the per-reward-token running-sum engine. Value is a wad-scaled
// running sum of unlockedShares/totalWeight; a position registered at baseline b
// with weight w has earned (Value-b)*w reward shares. Weight is staking shares,
// possibly boosted by the spend bonus.
//
// While no weight is registered, unlocked shares accrue to Dust instead of the
// running sum, and fold back in on the first settle with weight present, so
// nothing is stranded. Forfeited entitlements re-enter the same way.
type Accumulator struct {
	ledger      *share.Ledger
	value       *big.Int // wad reward shares per weight unit
	totalWeight *big.Int
	dust        *big.Int // reward shares awaiting redistribution
	schedules   []*Schedule
	updated     uint64
}

// NewAccumulator creates an accumulator distributing the given reward token
// from the vault account.
func NewAccumulator(ledger *share.Ledger) *Accumulator {
	return &Accumulator{
		ledger:      ledger,
		value:       new(big.Int),
		totalWeight: new(big.Int),
		dust:        new(big.Int),
	}
}

// Value returns the running sum as of the last settle.
func (a *Accumulator) Value() *big.Int {
	return fixed.Clone(a.value)
}

// TotalWeight returns the registered staking weight.
func (a *Accumulator) TotalWeight() *big.Int {
	return fixed.Clone(a.totalWeight)
}

// Dust returns the reward shares awaiting redistribution.
func (a *Accumulator) Dust() *big.Int {
	return fixed.Clone(a.dust)
}

// Schedules returns the active funding schedules.
func (a *Accumulator) Schedules() []*Schedule {
	out := make([]*Schedule, len(a.schedules))
	copy(out, a.schedules)
	return out
}

// LockedShares returns the total still-locked funded shares.
func (a *Accumulator) LockedShares() *big.Int {
	total := new(big.Int)
	for _, s := range a.schedules {
		total.Add(total, s.locked)
	}
	return total
}

// Fund transfers reward tokens in from the funder and appends an unlock
// schedule over [start, start+duration). start must not be in the past.
func (a *Accumulator) Fund(funder gysr.Address, amount *big.Int, start, duration, now uint64) error {
	if duration == 0 {
		return reverts.InvalidInput("zero funding duration")
	}
	if start < now {
		return reverts.InvalidInput("funding start in the past")
	}
	a.Settle(now)

	shares, _, err := a.ledger.Mint(funder, amount)
	if err != nil {
		return errors.Wrap(err, "fund")
	}
	a.schedules = append(a.schedules, newSchedule(shares, start, duration))
	return nil
}

// Settle advances the running sum to now. Idempotent: a second settle at the
// same time is a no-op.
func (a *Accumulator) Settle(now uint64) {
	unlocked := new(big.Int)
	for _, s := range a.schedules {
		unlocked.Add(unlocked, s.settle(now))
	}
	a.updated = now

	if a.totalWeight.Sign() == 0 {
		// no one to credit; park the unlocked shares for redistribution
		a.dust.Add(a.dust, unlocked)
		return
	}

	unlocked.Add(unlocked, a.dust)
	a.dust.SetInt64(0)
	if unlocked.Sign() > 0 {
		a.value.Add(a.value, fixed.WadDiv(unlocked, a.totalWeight))
	}
}

// Clean settles and sweeps expired schedules. Idempotent.
func (a *Accumulator) Clean(now uint64) {
	a.Settle(now)
	active := a.schedules[:0]
	for _, s := range a.schedules {
		if !s.expired(now) {
			active = append(active, s)
		}
	}
	for i := len(active); i < len(a.schedules); i++ {
		a.schedules[i] = nil
	}
	a.schedules = active
}

// AddWeight registers staking weight and returns the baseline for the new
// position. Callers must settle first.
func (a *Accumulator) AddWeight(weight *big.Int) *big.Int {
	a.totalWeight.Add(a.totalWeight, weight)
	return fixed.Clone(a.value)
}

// RemoveWeight deregisters staking weight.
func (a *Accumulator) RemoveWeight(weight *big.Int) {
	a.totalWeight.Sub(a.totalWeight, weight)
	if a.totalWeight.Sign() < 0 {
		// registration bookkeeping is module-internal; this is unreachable
		// unless a module is defective
		panic("accumulator weight underflow")
	}
}

// Earned computes the reward shares accrued by weight since baseline, as of
// the last settle.
func (a *Accumulator) Earned(baseline, weight *big.Int) *big.Int {
	delta := new(big.Int).Sub(a.value, baseline)
	return fixed.WadMul(delta, weight)
}

// Distribute redeems earned reward shares to the account. Returns the token
// amount sent.
func (a *Accumulator) Distribute(to gysr.Address, shares *big.Int) (*big.Int, error) {
	if shares.Sign() == 0 {
		return new(big.Int), nil
	}
	amount, _, err := a.ledger.Burn(to, shares)
	if err != nil {
		return nil, errors.Wrap(err, "distribute")
	}
	return amount, nil
}

// Forfeit returns reward shares to the dust pool for redistribution to the
// remaining registered weight.
func (a *Accumulator) Forfeit(shares *big.Int) {
	a.dust.Add(a.dust, shares)
}
