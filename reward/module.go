// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward implements the reward accounting modules: running-sum
// accumulators fed by linear funding schedules, with competitive, friendly
// and multi-token release policies.
package reward

import (
	"math/big"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/log"
	"github.com/gysr-io/core-go/reverts"
)

var logger = log.WithContext("pkg", "reward")

// Module is the reward-side capability interface consumed by the pool
// orchestrator. The orchestrator forwards the staking share delta of each
// operation; modules settle time first, then apply it.
//
// data carries the module-specific auxiliary arguments (position index, token
// registration lists, GYSR spend); a wrong type or malformed content is an
// InvalidInput revert before any state change.
type Module interface {
	// Tokens lists the reward token ids this module distributes.
	Tokens() []gysr.Address

	// Stake registers newly staked shares for reward accrual.
	Stake(account gysr.Address, shares *big.Int, data any) (*Receipt, error)

	// Unstake removes staked shares and pays out accrued rewards.
	Unstake(account gysr.Address, shares *big.Int, data any) (*Receipt, error)

	// Claim pays out accrued rewards without moving principal.
	Claim(account gysr.Address, data any) (*Receipt, error)

	// Update performs account-scoped maintenance without moving principal.
	Update(account gysr.Address, data any) error

	// Clean advances accumulators and sweeps expired funding schedules.
	Clean(data any) error
}

// Receipt reports the side effects of a reward module operation back to the
// orchestrator, which owns the GYSR escrow.
type Receipt struct {
	// GysrSpent is the GYSR committed to the affected position on stake.
	GysrSpent *big.Int
	// GysrVested is the GYSR released from consumed positions.
	GysrVested *big.Int
	// Rewards are the distributed token amounts by reward token id.
	Rewards map[gysr.Address]*big.Int
}

func newReceipt() *Receipt {
	return &Receipt{
		GysrSpent:  new(big.Int),
		GysrVested: new(big.Int),
		Rewards:    make(map[gysr.Address]*big.Int),
	}
}

func (r *Receipt) addReward(token gysr.Address, amount *big.Int) {
	if prev, ok := r.Rewards[token]; ok {
		prev.Add(prev, amount)
		return
	}
	r.Rewards[token] = fixed.Clone(amount)
}

// StakeData is the auxiliary stake argument for single-token modules.
type StakeData struct {
	// GysrSpent boosts the position's accrual weight; zero means no boost.
	GysrSpent *big.Int
}

// PositionData selects a position by index for unstake and claim. The caller
// always names the position explicitly; there is no implied stacking order.
type PositionData struct {
	Index int
	// GysrSpent optionally re-boosts the position on claim.
	GysrSpent *big.Int
}

// position is one stake action's reward accounting record.
type position struct {
	shares    *big.Int // raw staking shares
	weight    *big.Int // shares scaled by the spend bonus
	baseline  *big.Int // accumulator value at registration
	gysr      *big.Int // escrowed GYSR committed to this position
	timestamp uint64
}

// positionFrac splits off the given share count from the position, returning
// the pro-rata weight and GYSR attributed to it. shares must not exceed the
// position's shares.
func (p *position) frac(shares *big.Int) (weight, gysrPart *big.Int) {
	if shares.Cmp(p.shares) == 0 {
		return fixed.Clone(p.weight), fixed.Clone(p.gysr)
	}
	return fixed.MulDiv(p.weight, shares, p.shares), fixed.MulDiv(p.gysr, shares, p.shares)
}

// positions is a per-account arena. Removal swaps with the last element, so a
// position's index is stable only until a lower-indexed position is removed.
type positions map[gysr.Address][]*position

func (ps positions) get(account gysr.Address, index int) (*position, error) {
	list := ps[account]
	if index < 0 || index >= len(list) {
		return nil, reverts.InvalidInput("position index out of range")
	}
	return list[index], nil
}

func (ps positions) append(account gysr.Address, p *position) int {
	ps[account] = append(ps[account], p)
	return len(ps[account]) - 1
}

func (ps positions) remove(account gysr.Address, index int) {
	list := ps[account]
	last := len(list) - 1
	list[index] = list[last]
	list[last] = nil
	list = list[:last]
	if len(list) == 0 {
		delete(ps, account)
		return
	}
	ps[account] = list
}

func (ps positions) count(account gysr.Address) int {
	return len(ps[account])
}

func stakeData(data any) (*StakeData, error) {
	if data == nil {
		return &StakeData{}, nil
	}
	d, ok := data.(*StakeData)
	if !ok {
		return nil, reverts.InvalidInput("malformed stake data")
	}
	return d, nil
}

func positionData(data any) (*PositionData, error) {
	d, ok := data.(*PositionData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed position data")
	}
	return d, nil
}

func gysrOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	if v.Sign() < 0 {
		return new(big.Int)
	}
	return fixed.Clone(v)
}
