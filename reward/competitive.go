// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/jonboulle/clockwork"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
)

// CompetitiveConfig parameterizes the competitive release policy.
type CompetitiveConfig struct {
	// BonusMin is the wad payout multiplier at stake age zero.
	BonusMin *big.Int
	// BonusMax is the wad multiplier reached at BonusPeriod; the effective
	// payout coefficient is capped at one.
	BonusMax *big.Int
	// BonusPeriod is the ramp length in seconds. Zero jumps straight to
	// BonusMax.
	BonusPeriod uint64
	// GysrWeight is the wad spend-bonus weight constant.
	GysrWeight *big.Int
}

func (c *CompetitiveConfig) normalize() error {
	if c.BonusMin == nil || c.BonusMax == nil {
		return reverts.InvalidInput("bonus bounds required")
	}
	if c.BonusMin.Sign() < 0 || c.BonusMax.Cmp(c.BonusMin) < 0 {
		return reverts.InvalidInput("bonus bounds out of order")
	}
	if c.GysrWeight == nil || c.GysrWeight.Sign() <= 0 {
		c.GysrWeight = fixed.Clone(DefaultGysrWeight)
	}
	return nil
}

// Competitive is the single-token competitive reward module: payouts scale
// with a time-bonus multiplier ramping from BonusMin to BonusMax over
// BonusPeriod. There is no forfeiture redistribution; an early exit simply
// earns the lower multiplier and the shortfall stays with the pool.
type Competitive struct {
	clock     clockwork.Clock
	tokenID   gysr.Address
	acc       *Accumulator
	cfg       CompetitiveConfig
	positions positions
	totalRaw  *big.Int
}

// NewCompetitive creates a competitive reward module distributing the
// ledger's token.
func NewCompetitive(clock clockwork.Clock, tokenID gysr.Address, ledger *share.Ledger, cfg CompetitiveConfig) (*Competitive, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Competitive{
		clock:     clock,
		tokenID:   tokenID,
		acc:       NewAccumulator(ledger),
		cfg:       cfg,
		positions: make(positions),
		totalRaw:  new(big.Int),
	}, nil
}

func (m *Competitive) now() uint64 {
	return uint64(m.clock.Now().Unix())
}

// Tokens implements Module.
func (m *Competitive) Tokens() []gysr.Address {
	return []gysr.Address{m.tokenID}
}

// Accumulator exposes the underlying accumulator for inspection.
func (m *Competitive) Accumulator() *Accumulator {
	return m.acc
}

// PositionCount returns the number of open positions for the account.
func (m *Competitive) PositionCount(account gysr.Address) int {
	return m.positions.count(account)
}

// Fund schedules new rewards; start zero means now.
func (m *Competitive) Fund(funder gysr.Address, amount *big.Int, start, duration uint64) error {
	now := m.now()
	if start == 0 {
		start = now
	}
	return m.acc.Fund(funder, amount, start, duration, now)
}

// timeBonus is the wad payout coefficient at the given stake age:
// BonusMin ramping linearly to BonusMax over BonusPeriod, capped at one.
func (m *Competitive) timeBonus(age uint64) *big.Int {
	bonus := fixed.Clone(m.cfg.BonusMax)
	if m.cfg.BonusPeriod > 0 && age < m.cfg.BonusPeriod {
		span := new(big.Int).Sub(m.cfg.BonusMax, m.cfg.BonusMin)
		bonus = fixed.MulDiv(span, new(big.Int).SetUint64(age), new(big.Int).SetUint64(m.cfg.BonusPeriod))
		bonus.Add(bonus, m.cfg.BonusMin)
	}
	return fixed.Min(bonus, fixed.Unit)
}

// Stake implements Module. data is *StakeData or nil.
func (m *Competitive) Stake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
	d, err := stakeData(data)
	if err != nil {
		return nil, err
	}
	if fixed.IsZero(shares) {
		return nil, reverts.InvalidInput("zero share stake")
	}
	now := m.now()
	m.acc.Settle(now)

	spent := gysrOrZero(d.GysrSpent)
	bonus, err := SpendBonus(spent, usageRatio(m.acc.TotalWeight(), m.totalRaw), m.cfg.GysrWeight)
	if err != nil {
		return nil, err
	}
	weight := fixed.WadMul(shares, bonus)

	baseline := m.acc.AddWeight(weight)
	m.totalRaw.Add(m.totalRaw, shares)
	m.positions.append(account, &position{
		shares:    fixed.Clone(shares),
		weight:    weight,
		baseline:  baseline,
		gysr:      spent,
		timestamp: now,
	})

	logger.Debug("competitive stake", "account", account, "shares", shares, "gysr", spent)
	r := newReceipt()
	r.GysrSpent = fixed.Clone(spent)
	return r, nil
}

// Unstake implements Module. data is *PositionData naming the position. The
// multiplier shortfall of an early exit is not redistributed: those reward
// shares stay in the module's vault.
func (m *Competitive) Unstake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
	d, err := positionData(data)
	if err != nil {
		return nil, err
	}
	if fixed.IsZero(shares) {
		return nil, reverts.InvalidInput("zero share unstake")
	}
	pos, err := m.positions.get(account, d.Index)
	if err != nil {
		return nil, err
	}
	if shares.Cmp(pos.shares) > 0 {
		return nil, reverts.InsufficientBalance("unstake exceeds position shares")
	}
	now := m.now()
	m.acc.Settle(now)

	weight, gysrPart := pos.frac(shares)
	earned := m.acc.Earned(pos.baseline, weight)
	payout := fixed.WadMul(earned, m.timeBonus(now-pos.timestamp))

	amount, err := m.acc.Distribute(account, payout)
	if err != nil {
		return nil, err
	}
	m.acc.RemoveWeight(weight)
	m.totalRaw.Sub(m.totalRaw, shares)

	if shares.Cmp(pos.shares) == 0 {
		m.positions.remove(account, d.Index)
	} else {
		pos.shares.Sub(pos.shares, shares)
		pos.weight.Sub(pos.weight, weight)
		pos.gysr.Sub(pos.gysr, gysrPart)
	}

	logger.Debug("competitive unstake", "account", account, "shares", shares, "reward", amount)
	r := newReceipt()
	r.GysrVested = gysrPart
	r.addReward(m.tokenID, amount)
	return r, nil
}

// Claim implements Module: pays the time-weighted accrual and re-baselines
// the position without resetting its bonus clock.
func (m *Competitive) Claim(account gysr.Address, data any) (*Receipt, error) {
	d, err := positionData(data)
	if err != nil {
		return nil, err
	}
	pos, err := m.positions.get(account, d.Index)
	if err != nil {
		return nil, err
	}
	now := m.now()
	m.acc.Settle(now)

	earned := m.acc.Earned(pos.baseline, pos.weight)
	payout := fixed.WadMul(earned, m.timeBonus(now-pos.timestamp))

	amount, err := m.acc.Distribute(account, payout)
	if err != nil {
		return nil, err
	}

	gysrVested := fixed.Clone(pos.gysr)
	spent := gysrOrZero(d.GysrSpent)
	bonus, err := SpendBonus(spent, usageRatio(m.acc.TotalWeight(), m.totalRaw), m.cfg.GysrWeight)
	if err != nil {
		return nil, err
	}
	newWeight := fixed.WadMul(pos.shares, bonus)
	m.acc.RemoveWeight(pos.weight)
	pos.baseline = m.acc.AddWeight(newWeight)
	pos.weight = newWeight
	pos.gysr = spent

	r := newReceipt()
	r.GysrSpent = fixed.Clone(spent)
	r.GysrVested = gysrVested
	r.addReward(m.tokenID, amount)
	return r, nil
}

// Update implements Module: settles the accumulator.
func (m *Competitive) Update(_ gysr.Address, _ any) error {
	m.acc.Settle(m.now())
	return nil
}

// Clean implements Module: settles and sweeps expired funding schedules.
func (m *Competitive) Clean(_ any) error {
	m.acc.Clean(m.now())
	return nil
}

// Claimable previews the time-weighted reward of a position at the current time.
func (m *Competitive) Claimable(account gysr.Address, index int) (*big.Int, error) {
	pos, err := m.positions.get(account, index)
	if err != nil {
		return nil, err
	}
	now := m.now()
	m.acc.Settle(now)
	earned := m.acc.Earned(pos.baseline, pos.weight)
	payout := fixed.WadMul(earned, m.timeBonus(now-pos.timestamp))
	return m.acc.ledger.TokensFor(payout), nil
}

var _ Module = (*Competitive)(nil)
