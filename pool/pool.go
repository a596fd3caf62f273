// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the orchestrator composing one staking module with
// one reward module, routing principal and reward accounting and owning the
// GYSR spend escrow.
package pool

import (
	"math/big"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/gysr-io/core-go/config"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/log"
	"github.com/gysr-io/core-go/metrics"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/reward"
	"github.com/gysr-io/core-go/staking"
	"github.com/gysr-io/core-go/token"
)

var logger = log.WithContext("pkg", "pool")

var (
	stakeCounter = metrics.LazyLoad(func() metrics.CountVecMeter {
		return metrics.CounterVec("pool_operation_count", []string{"op"})
	})
	stakedGauge = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("pool_staked_total")
	})
)

// Pool composes one staking module and one reward module. The module variants
// are fixed at construction. All mutating operations are serialized under one
// mutex; reads take the same lock so they never observe a mid-mutation state.
type Pool struct {
	mu sync.Mutex

	clock    clockwork.Clock
	owner    gysr.Address
	vault    gysr.Address // the pool's own account, holds escrowed GYSR
	staking  staking.Module
	rewards  reward.Module
	gysr     token.Token
	registry config.Registry

	gysrPending  *big.Int // escrowed against open positions
	gysrRetained *big.Int // vested to the pool, owner-withdrawable
}

// New creates a pool. registry may be nil to disable fees.
func New(clock clockwork.Clock, owner, vault gysr.Address, stakingMod staking.Module,
	rewardMod reward.Module, gysrToken token.Token, registry config.Registry) *Pool {
	return &Pool{
		clock:        clock,
		owner:        owner,
		vault:        vault,
		staking:      stakingMod,
		rewards:      rewardMod,
		gysr:         gysrToken,
		registry:     registry,
		gysrPending:  new(big.Int),
		gysrRetained: new(big.Int),
	}
}

// StakingModule returns the composed staking module for administration.
func (p *Pool) StakingModule() staking.Module {
	return p.staking
}

// RewardModule returns the composed reward module for administration.
func (p *Pool) RewardModule() reward.Module {
	return p.rewards
}

// injectSpend folds an escrowed GYSR spend into the reward-side stake data.
// The reward module variants form a closed set.
func injectSpend(rdata any, spend *big.Int) (any, error) {
	switch d := rdata.(type) {
	case nil:
		if spend.Sign() > 0 {
			return &reward.StakeData{GysrSpent: spend}, nil
		}
		return nil, nil
	case *reward.StakeData:
		d.GysrSpent = spend
		return d, nil
	case *reward.MultiStakeData:
		d.GysrSpent = spend
		return d, nil
	default:
		return nil, reverts.InvalidInput("malformed reward stake data")
	}
}

// Stake deposits amount through the staking module and registers the
// resulting shares with the reward module. spend is GYSR committed to boost
// the new position; it is escrowed by the pool until the position unwinds.
func (p *Pool) Stake(account gysr.Address, amount, spend *big.Int, sdata, rdata any) (*reward.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	spend = spendOrZero(spend)
	if spend.Sign() > 0 {
		if p.gysr == nil {
			return nil, reverts.InvalidInput("pool has no GYSR token")
		}
		if p.gysr.BalanceOf(account).Cmp(spend) < 0 {
			return nil, reverts.InsufficientBalance("GYSR balance below spend")
		}
	}
	rdata, err := injectSpend(rdata, spend)
	if err != nil {
		return nil, err
	}

	// escrow first so the reward module sees the actually-delivered spend
	if spend.Sign() > 0 {
		delivered, err := p.gysr.Transfer(account, p.vault, spend)
		if err != nil {
			return nil, err
		}
		spend = delivered
		rdata, _ = injectSpend(rdata, spend)
	}

	shares, err := p.staking.Stake(account, amount, sdata)
	if err != nil {
		p.refundSpend(account, spend)
		return nil, err
	}
	receipt, err := p.rewards.Stake(account, shares, rdata)
	if err != nil {
		p.refundSpend(account, spend)
		return nil, err
	}
	p.gysrPending.Add(p.gysrPending, receipt.GysrSpent)

	stakeCounter().AddWithLabel(1, map[string]string{"op": "stake"})
	stakedGauge().Set(totalsGaugeValue(p.staking.Totals()))
	logger.Info("stake", "account", account, "amount", amount, "shares", shares, "gysr", receipt.GysrSpent)
	return receipt, nil
}

// Unstake withdraws amount through the staking module, closes out the
// corresponding reward accounting, and vests the GYSR escrowed against the
// consumed positions at the current fee rate.
func (p *Pool) Unstake(account gysr.Address, amount *big.Int, sdata, rdata any) (*reward.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// the staking withdrawal is not reversible, so the reward-side position
	// data has to be known good before principal moves
	if err := p.validatePositionData(account, rdata); err != nil {
		return nil, err
	}
	shares, err := p.staking.Unstake(account, amount, sdata)
	if err != nil {
		return nil, err
	}
	receipt, err := p.rewards.Unstake(account, shares, rdata)
	if err != nil {
		return nil, err
	}
	if err := p.vestSpend(receipt.GysrVested); err != nil {
		return nil, err
	}

	stakeCounter().AddWithLabel(1, map[string]string{"op": "unstake"})
	stakedGauge().Set(totalsGaugeValue(p.staking.Totals()))
	logger.Info("unstake", "account", account, "amount", amount, "shares", shares, "gysrVested", receipt.GysrVested)
	return receipt, nil
}

// Claim pays out accrued rewards for amount's worth of staked shares without
// moving principal. Previously escrowed GYSR vests; spend optionally commits
// a fresh escrow to re-boost the position.
func (p *Pool) Claim(account gysr.Address, amount, spend *big.Int, sdata, rdata any) (*reward.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claim(account, amount, spend, sdata, rdata)
}

func (p *Pool) claim(account gysr.Address, amount, spend *big.Int, sdata, rdata any) (*reward.Receipt, error) {
	spend = spendOrZero(spend)
	if spend.Sign() > 0 {
		if p.gysr == nil {
			return nil, reverts.InvalidInput("pool has no GYSR token")
		}
		if d, ok := rdata.(*reward.PositionData); ok {
			d.GysrSpent = spend
		} else {
			return nil, reverts.InvalidInput("reward data does not accept a spend")
		}
		delivered, err := p.gysr.Transfer(account, p.vault, spend)
		if err != nil {
			return nil, err
		}
		if d, ok := rdata.(*reward.PositionData); ok {
			d.GysrSpent = delivered
		}
	}

	if _, err := p.staking.Claim(account, amount, sdata); err != nil {
		p.refundSpend(account, spend)
		return nil, err
	}
	receipt, err := p.rewards.Claim(account, rdata)
	if err != nil {
		p.refundSpend(account, spend)
		return nil, err
	}
	p.gysrPending.Add(p.gysrPending, receipt.GysrSpent)
	if err := p.vestSpend(receipt.GysrVested); err != nil {
		return nil, err
	}

	stakeCounter().AddWithLabel(1, map[string]string{"op": "claim"})
	logger.Info("claim", "account", account, "gysrVested", receipt.GysrVested)
	return receipt, nil
}

// Update runs account-scoped maintenance on both modules.
func (p *Pool) Update(account gysr.Address, sdata, rdata any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.staking.Update(account, sdata); err != nil {
		return err
	}
	return p.rewards.Update(account, rdata)
}

// Clean advances reward accumulators and sweeps expired funding schedules.
func (p *Pool) Clean(rdata any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rewards.Clean(rdata)
}

// Balance reports the account's withdrawable staked amount.
func (p *Pool) Balance(account gysr.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staking.Balance(account)
}

// Totals reports the total staked amount.
func (p *Pool) Totals() *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staking.Totals()
}

// GysrBalances reports the escrowed (pending) and pool-retained (vested)
// GYSR amounts.
func (p *Pool) GysrBalances() (pending, retained *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fixed.Clone(p.gysrPending), fixed.Clone(p.gysrRetained)
}

// WithdrawGysr extracts pool-retained GYSR to the recipient. Owner only.
func (p *Pool) WithdrawGysr(caller, to gysr.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.owner {
		return reverts.Unauthorized("caller is not the pool owner")
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.InvalidInput("zero withdraw amount")
	}
	if amount.Cmp(p.gysrRetained) > 0 {
		return reverts.InsufficientBalance("amount exceeds retained GYSR")
	}
	if _, err := p.gysr.Transfer(p.vault, to, amount); err != nil {
		return err
	}
	p.gysrRetained.Sub(p.gysrRetained, amount)
	return nil
}

// vestSpend releases escrowed GYSR from consumed positions: the treasury fee
// at the current registry rate is sent out, the remainder is retained by the
// pool. Rates are looked up fresh; the unstake-time rate applies.
func (p *Pool) vestSpend(vested *big.Int) error {
	if vested.Sign() == 0 {
		return nil
	}
	p.gysrPending.Sub(p.gysrPending, vested)

	fee := new(big.Int)
	if p.registry != nil {
		if entry, ok := p.registry.Get(config.KeySpendFee); ok && entry.Rate.Sign() > 0 {
			fee = fixed.WadMul(vested, entry.Rate)
			if fee.Sign() > 0 {
				if _, err := p.gysr.Transfer(p.vault, entry.Recipient, fee); err != nil {
					return err
				}
			}
		}
	}
	p.gysrRetained.Add(p.gysrRetained, new(big.Int).Sub(vested, fee))
	return nil
}

// refundSpend unwinds a freshly-escrowed spend after a failed operation.
func (p *Pool) refundSpend(account gysr.Address, spend *big.Int) {
	if spend.Sign() == 0 {
		return
	}
	if _, err := p.gysr.Transfer(p.vault, account, spend); err != nil {
		logger.Error("spend refund failed", "account", account, "amount", spend, "err", err)
	}
}

func spendOrZero(v *big.Int) *big.Int {
	if v == nil || v.Sign() < 0 {
		return new(big.Int)
	}
	return fixed.Clone(v)
}

// totalsGaugeValue compresses a token amount into a gauge unit, saturating
// instead of overflowing.
func totalsGaugeValue(total *big.Int) int64 {
	if total.IsInt64() {
		return total.Int64()
	}
	return (1 << 62)
}
