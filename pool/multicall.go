// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/reward"
)

// OpKind selects a multicall sub-operation. Mutating principal movements
// (stake/unstake) are excluded: their failure cases depend on external token
// collaborators and cannot be pre-validated, which all-or-nothing batching
// requires.
type OpKind int

const (
	// OpClaim claims rewards against one position or bond.
	OpClaim OpKind = iota
	// OpClean sweeps expired funding schedules.
	OpClean
)

// Call is one multicall sub-operation.
type Call struct {
	Op          OpKind
	Account     gysr.Address
	Amount      *big.Int
	Spend       *big.Int
	StakingData any
	RewardData  any
}

// positionCounter is implemented by the single-token reward modules.
type positionCounter interface {
	PositionCount(account gysr.Address) int
}

// tokenSetValidator is implemented by the multi-token reward module.
type tokenSetValidator interface {
	ValidateTokens(account gysr.Address, index int, tokens []gysr.Address) error
}

// Multicall executes several sub-operations atomically: every call is
// validated against current state before any is applied, so a malformed or
// unauthorized sub-call fails the whole batch up front with no partial
// effects. Typical use is claiming across several positions or bond ids in
// one invocation.
func (p *Pool) Multicall(calls []Call) ([]*reward.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(calls) == 0 {
		return nil, reverts.InvalidInput("empty multicall")
	}

	spends := make(map[gysr.Address]*big.Int)
	for i, c := range calls {
		if err := p.validateCall(c, spends); err != nil {
			return nil, errors.Wrapf(err, "multicall op %d", i)
		}
	}
	if p.gysr != nil {
		for account, total := range spends {
			if p.gysr.BalanceOf(account).Cmp(total) < 0 {
				return nil, reverts.InsufficientBalance("GYSR balance below batched spend")
			}
		}
	}

	receipts := make([]*reward.Receipt, 0, len(calls))
	for i, c := range calls {
		switch c.Op {
		case OpClaim:
			r, err := p.claim(c.Account, c.Amount, c.Spend, c.StakingData, c.RewardData)
			if err != nil {
				// unreachable for validated claims; surfaced loudly because
				// the batch is no longer atomic at this point
				return nil, errors.Wrapf(err, "multicall op %d applied partially", i)
			}
			receipts = append(receipts, r)
		case OpClean:
			if err := p.rewards.Clean(c.RewardData); err != nil {
				return nil, errors.Wrapf(err, "multicall op %d applied partially", i)
			}
			receipts = append(receipts, nil)
		}
	}
	return receipts, nil
}

// validatePositionData checks reward-side position data against current state
// without mutating, so callers can reject a bad position before touching the
// staking side.
func (p *Pool) validatePositionData(account gysr.Address, rdata any) error {
	switch d := rdata.(type) {
	case *reward.PositionData:
		counter, ok := p.rewards.(positionCounter)
		if !ok {
			return reverts.InvalidInput("position data for a positionless reward module")
		}
		if d == nil || d.Index < 0 || d.Index >= counter.PositionCount(account) {
			return reverts.InvalidInput("position index out of range")
		}
		return nil
	case *reward.MultiPositionData:
		validator, ok := p.rewards.(tokenSetValidator)
		if !ok {
			return reverts.InvalidInput("multi-token data for a single-token reward module")
		}
		if d == nil {
			return reverts.InvalidInput("malformed position data")
		}
		return validator.ValidateTokens(account, d.Index, d.Tokens)
	default:
		return reverts.InvalidInput("malformed position data")
	}
}

// validateCall checks one sub-call against current state without mutating,
// accumulating per-account spend totals.
func (p *Pool) validateCall(c Call, spends map[gysr.Address]*big.Int) error {
	switch c.Op {
	case OpClaim:
		// the staking side of a claim is pure resolution
		if _, err := p.staking.Claim(c.Account, c.Amount, c.StakingData); err != nil {
			return err
		}
		spend := spendOrZero(c.Spend)
		if err := p.validatePositionData(c.Account, c.RewardData); err != nil {
			return err
		}
		if _, ok := c.RewardData.(*reward.MultiPositionData); ok && spend.Sign() > 0 {
			return reverts.InvalidInput("reward data does not accept a spend")
		}
		if spend.Sign() > 0 {
			if p.gysr == nil {
				return reverts.InvalidInput("pool has no GYSR token")
			}
			total, ok := spends[c.Account]
			if !ok {
				total = new(big.Int)
				spends[c.Account] = total
			}
			total.Add(total, spend)
		}
		return nil
	case OpClean:
		switch c.RewardData.(type) {
		case nil, *reward.MultiCleanData:
			return nil
		default:
			return reverts.InvalidInput("malformed clean data")
		}
	default:
		return reverts.InvalidInput("unknown multicall op")
	}
}
