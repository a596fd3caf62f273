// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/gysr-io/core-go/fixed"
)

// Schedule is one funding event for a reward token. The funded shares unlock
// linearly from Start over Duration. Multiple schedules per token coexist.
type Schedule struct {
	amount   *big.Int // total funded, in reward token shares
	locked   *big.Int // still locked, in reward token shares
	start    uint64
	duration uint64
	updated  uint64
}

func newSchedule(amountShares *big.Int, start, duration uint64) *Schedule {
	return &Schedule{
		amount:   fixed.Clone(amountShares),
		locked:   fixed.Clone(amountShares),
		start:    start,
		duration: duration,
		updated:  start,
	}
}

// Amount returns the total funded shares.
func (s *Schedule) Amount() *big.Int {
	return fixed.Clone(s.amount)
}

// Locked returns the still-locked shares as of the last settle.
func (s *Schedule) Locked() *big.Int {
	return fixed.Clone(s.locked)
}

// Start returns the unlock start time.
func (s *Schedule) Start() uint64 {
	return s.start
}

// Duration returns the unlock window.
func (s *Schedule) Duration() uint64 {
	return s.duration
}

// End returns the unlock end time.
func (s *Schedule) End() uint64 {
	return s.start + s.duration
}

// settle advances the schedule to now and returns the newly unlocked shares.
// Locked shares are recomputed from the total, not decremented incrementally,
// so they are exactly zero at expiry: rounding dust unlocks with the final
// interval instead of leaving a positive residue.
func (s *Schedule) settle(now uint64) *big.Int {
	if now <= s.start || now <= s.updated {
		return new(big.Int)
	}

	var target *big.Int
	if now >= s.End() {
		target = new(big.Int)
	} else {
		left := new(big.Int).SetUint64(s.End() - now)
		target = fixed.MulDiv(s.amount, left, new(big.Int).SetUint64(s.duration))
	}

	unlocked := new(big.Int).Sub(s.locked, target)
	s.locked = target
	s.updated = now
	return unlocked
}

// expired reports whether the unlock window is fully in the past. Sweeping
// callers settle first, so locked is already zero whenever this is true.
func (s *Schedule) expired(now uint64) bool {
	return now >= s.End()
}
