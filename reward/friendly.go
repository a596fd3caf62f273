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

// FriendlyConfig parameterizes the friendly release policy.
type FriendlyConfig struct {
	// VestingPeriod is the time to full vesting, in seconds. Zero disables
	// vesting (all accrual immediately claimable).
	VestingPeriod uint64
	// VestingStart is the wad vesting fraction at stake age zero.
	VestingStart *big.Int
	// GysrWeight is the wad spend-bonus weight constant.
	GysrWeight *big.Int
}

func (c *FriendlyConfig) normalize() error {
	if c.VestingStart == nil {
		c.VestingStart = new(big.Int)
	}
	if c.VestingStart.Sign() < 0 || c.VestingStart.Cmp(fixed.Unit) > 0 {
		return reverts.InvalidInput("vesting start outside [0,1]")
	}
	if c.GysrWeight == nil || c.GysrWeight.Sign() <= 0 {
		c.GysrWeight = fixed.Clone(DefaultGysrWeight)
	}
	return nil
}

// Friendly is the single-token friendly reward module: linear time vesting
// with forfeiture redistribution. The unvested portion of any early exit is
// returned to the accumulator's dust pool, benefiting the remaining staked
// positions rather than the protocol.
type Friendly struct {
	clock     clockwork.Clock
	tokenID   gysr.Address
	acc       *Accumulator
	cfg       FriendlyConfig
	positions positions
	totalRaw  *big.Int
}

// NewFriendly creates a friendly reward module distributing the ledger's token.
func NewFriendly(clock clockwork.Clock, tokenID gysr.Address, ledger *share.Ledger, cfg FriendlyConfig) (*Friendly, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Friendly{
		clock:     clock,
		tokenID:   tokenID,
		acc:       NewAccumulator(ledger),
		cfg:       cfg,
		positions: make(positions),
		totalRaw:  new(big.Int),
	}, nil
}

func (m *Friendly) now() uint64 {
	return uint64(m.clock.Now().Unix())
}

// Tokens implements Module.
func (m *Friendly) Tokens() []gysr.Address {
	return []gysr.Address{m.tokenID}
}

// Accumulator exposes the underlying accumulator for inspection.
func (m *Friendly) Accumulator() *Accumulator {
	return m.acc
}

// PositionCount returns the number of open positions for the account.
func (m *Friendly) PositionCount(account gysr.Address) int {
	return m.positions.count(account)
}

// Fund schedules new rewards; start zero means now.
func (m *Friendly) Fund(funder gysr.Address, amount *big.Int, start, duration uint64) error {
	now := m.now()
	if start == 0 {
		start = now
	}
	return m.acc.Fund(funder, amount, start, duration, now)
}

// vestingCoeff is the wad claimable fraction at the given stake age: the
// configured floor at age zero, linear to exactly one at the full period.
func (m *Friendly) vestingCoeff(age uint64) *big.Int {
	if m.cfg.VestingPeriod == 0 || age >= m.cfg.VestingPeriod {
		return fixed.Clone(fixed.Unit)
	}
	span := new(big.Int).Sub(fixed.Unit, m.cfg.VestingStart)
	ramp := fixed.MulDiv(span, new(big.Int).SetUint64(age), new(big.Int).SetUint64(m.cfg.VestingPeriod))
	return ramp.Add(ramp, m.cfg.VestingStart)
}

// Stake implements Module. data is *StakeData or nil.
func (m *Friendly) Stake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
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

	logger.Debug("friendly stake", "account", account, "shares", shares, "gysr", spent, "bonus", bonus)
	r := newReceipt()
	r.GysrSpent = fixed.Clone(spent)
	return r, nil
}

// Unstake implements Module. data is *PositionData naming the position.
// Shares must not exceed the position's; the accrued reward is consumed
// pro-rata to the fraction removed, vested by stake age, with the unvested
// remainder forfeited to dust.
func (m *Friendly) Unstake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
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
	coeff := m.vestingCoeff(now - pos.timestamp)
	vested := fixed.WadMul(earned, coeff)
	forfeited := new(big.Int).Sub(earned, vested)

	amount, err := m.acc.Distribute(account, vested)
	if err != nil {
		return nil, err
	}
	m.acc.Forfeit(forfeited)
	m.acc.RemoveWeight(weight)
	m.totalRaw.Sub(m.totalRaw, shares)

	if shares.Cmp(pos.shares) == 0 {
		m.positions.remove(account, d.Index)
	} else {
		pos.shares.Sub(pos.shares, shares)
		pos.weight.Sub(pos.weight, weight)
		pos.gysr.Sub(pos.gysr, gysrPart)
	}

	logger.Debug("friendly unstake", "account", account, "shares", shares, "reward", amount, "forfeited", forfeited)
	r := newReceipt()
	r.GysrVested = gysrPart
	r.addReward(m.tokenID, amount)
	return r, nil
}

// Claim implements Module. Pays the vested portion of the position's accrual,
// forfeits the rest to dust, and re-baselines the position. The position's
// escrowed GYSR vests and a new spend may be supplied to re-boost; the vesting
// clock is not reset.
func (m *Friendly) Claim(account gysr.Address, data any) (*Receipt, error) {
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
	coeff := m.vestingCoeff(now - pos.timestamp)
	vested := fixed.WadMul(earned, coeff)
	forfeited := new(big.Int).Sub(earned, vested)

	amount, err := m.acc.Distribute(account, vested)
	if err != nil {
		return nil, err
	}
	m.acc.Forfeit(forfeited)

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

	logger.Debug("friendly claim", "account", account, "reward", amount, "gysrVested", gysrVested)
	r := newReceipt()
	r.GysrSpent = fixed.Clone(spent)
	r.GysrVested = gysrVested
	r.addReward(m.tokenID, amount)
	return r, nil
}

// Update implements Module: settles the accumulator for the account's benefit.
func (m *Friendly) Update(_ gysr.Address, _ any) error {
	m.acc.Settle(m.now())
	return nil
}

// Clean implements Module: settles and sweeps expired funding schedules.
func (m *Friendly) Clean(_ any) error {
	m.acc.Clean(m.now())
	return nil
}

// Claimable previews the vested reward of a position at the current time.
func (m *Friendly) Claimable(account gysr.Address, index int) (*big.Int, error) {
	pos, err := m.positions.get(account, index)
	if err != nil {
		return nil, err
	}
	now := m.now()
	m.acc.Settle(now)
	earned := m.acc.Earned(pos.baseline, pos.weight)
	vestedShares := fixed.WadMul(earned, m.vestingCoeff(now-pos.timestamp))
	return m.acc.ledger.TokensFor(vestedShares), nil
}

var _ Module = (*Friendly)(nil)
