// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bond implements discriminatory-price bond markets: discounted debt
// sold against a decaying price curve, with market-wide principal vesting and
// transferable tokenized positions.
package bond

import (
	"math/big"

	"github.com/jonboulle/clockwork"

	"github.com/gysr-io/core-go/config"
	"github.com/gysr-io/core-go/decay"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/log"
	"github.com/gysr-io/core-go/metrics"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
)

var logger = log.WithContext("pkg", "bond")

var purchaseCounter = metrics.LazyLoad(func() metrics.CountMeter {
	return metrics.Counter("bond_purchase_count")
})

// Config parameterizes a bond engine.
type Config struct {
	// VestingPeriod is the debt-decay and principal-vesting window in seconds.
	VestingPeriod uint64
	// AdjustmentCooldown is the repricing glide window in seconds. Zero makes
	// adjustments take effect immediately.
	AdjustmentCooldown uint64
}

// Bond is one purchase: a decaying principal attribution plus a fixed debt
// entitlement, redeemable at maturity. Ownership lives in the id registry and
// transfers with it.
type Bond struct {
	market    gysr.Address
	principal *big.Int // collateral shares, decaying attribution
	debt      *big.Int
	timestamp uint64
}

// Redemption reports the effects of redeeming against a bond.
type Redemption struct {
	// DebtOut is the matured debt redeemed.
	DebtOut *big.Int
	// Forfeited is the unvested debt given up on an early exit.
	Forfeited *big.Int
	// Principal is the collateral token amount returned.
	Principal *big.Int
	// Closed reports whether the bond was burned.
	Closed bool
}

// Metadata describes a bond for external rendering.
type Metadata struct {
	ID        uint64
	Market    gysr.Address
	Owner     gysr.Address
	Principal *big.Int // collateral token preview of the remaining attribution
	Debt      *big.Int
	Timestamp uint64
	Matured   bool
}

// Engine manages the bond markets of one pool. It is not safe for concurrent
// use; the owning pool serializes access.
type Engine struct {
	clock   clockwork.Clock
	owner   gysr.Address
	cfg     Config
	fees    config.Registry // nil disables purchase fees
	markets map[gysr.Address]*Market
	bonds   map[uint64]*Bond
	ids     *Registry
}

// NewEngine creates a bond engine controlled by the owner account.
func NewEngine(clock clockwork.Clock, owner gysr.Address, fees config.Registry, cfg Config) (*Engine, error) {
	if cfg.VestingPeriod == 0 {
		return nil, reverts.InvalidInput("zero vesting period")
	}
	return &Engine{
		clock:   clock,
		owner:   owner,
		cfg:     cfg,
		fees:    fees,
		markets: make(map[gysr.Address]*Market),
		bonds:   make(map[uint64]*Bond),
		ids:     NewRegistry(),
	}, nil
}

func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}

// Registry exposes the bond ownership registry.
func (e *Engine) Registry() *Registry {
	return e.ids
}

// Market returns the market for a collateral token, or nil.
func (e *Engine) Market(tokenID gysr.Address) *Market {
	return e.markets[tokenID]
}

// Markets lists the collateral tokens with open markets.
func (e *Engine) Markets() []gysr.Address {
	out := make([]gysr.Address, 0, len(e.markets))
	for id := range e.markets {
		out = append(out, id)
	}
	return out
}

// Open creates a market selling debt against the ledger's collateral token.
func (e *Engine) Open(caller, tokenID gysr.Address, ledger *share.Ledger, price, coeff, max, capacity *big.Int) error {
	if caller != e.owner {
		return reverts.Unauthorized("caller is not the engine owner")
	}
	if price == nil || price.Sign() <= 0 {
		return reverts.InvalidInput("zero market price")
	}
	if max == nil || max.Sign() <= 0 {
		return reverts.InvalidInput("zero bond size cap")
	}
	if capacity == nil || capacity.Sign() <= 0 {
		return reverts.InvalidInput("zero market capacity")
	}
	if coeff == nil || coeff.Sign() < 0 {
		return reverts.InvalidInput("negative price coefficient")
	}
	if _, ok := e.markets[tokenID]; ok {
		return reverts.StateConflict("market already open for %s", tokenID)
	}

	e.markets[tokenID] = &Market{
		ledger:   ledger,
		price:    fixed.Clone(price),
		coeff:    fixed.Clone(coeff),
		max:      fixed.Clone(max),
		capacity: fixed.Clone(capacity),
		debt:     decay.New(e.cfg.VestingPeriod),
		vesting:  decay.New(e.cfg.VestingPeriod),
		vested:   new(big.Int),
	}
	logger.Info("market opened", "token", tokenID, "price", price, "capacity", capacity)
	return nil
}

// Price previews the current sale price of a market.
func (e *Engine) Price(tokenID gysr.Address) (*big.Int, error) {
	m, ok := e.markets[tokenID]
	if !ok {
		return nil, reverts.StateConflict("no market for %s", tokenID)
	}
	return m.CurrentPrice(e.now(), e.cfg.AdjustmentCooldown), nil
}

// Purchase sells a bond: the deposited collateral (less any configured fee)
// buys debt at the current curve price. minDebtOut is the caller's slippage
// floor. Every purchase restarts the market-wide vesting clock.
func (e *Engine) Purchase(account, tokenID gysr.Address, amount, minDebtOut *big.Int) (uint64, error) {
	m, ok := e.markets[tokenID]
	if !ok {
		return 0, reverts.StateConflict("no market for %s", tokenID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, reverts.InvalidInput("zero purchase amount")
	}
	now := e.now()
	m.settle(now, e.cfg.AdjustmentCooldown)

	var fee *big.Int
	var feeTo gysr.Address
	net := fixed.Clone(amount)
	if e.fees != nil {
		if entry, ok := e.fees.Get(config.KeyBondFee); ok && entry.Rate.Sign() > 0 {
			fee = fixed.WadMul(amount, entry.Rate)
			feeTo = entry.Recipient
			net.Sub(net, fee)
			if net.Sign() <= 0 {
				return 0, reverts.InvalidInput("amount consumed by fee")
			}
		}
	}

	price := m.CurrentPrice(now, e.cfg.AdjustmentCooldown)
	debtOut := fixed.WadDiv(net, price)
	if debtOut.Sign() == 0 {
		return 0, reverts.InvalidInput("amount prices to zero debt")
	}
	if debtOut.Cmp(m.max) > 0 {
		return 0, reverts.CapacityExceeded("debt %v exceeds bond cap %v", debtOut, m.max)
	}
	if debtOut.Cmp(m.capacity) > 0 {
		return 0, reverts.CapacityExceeded("debt %v exceeds market capacity %v", debtOut, m.capacity)
	}
	if minDebtOut != nil && debtOut.Cmp(minDebtOut) < 0 {
		return 0, reverts.CapacityExceeded("debt %v below minimum %v", debtOut, minDebtOut)
	}
	if m.ledger.Token().BalanceOf(account).Cmp(amount) < 0 {
		return 0, reverts.InsufficientBalance("balance below purchase amount")
	}

	shares, received, err := m.ledger.Mint(account, net)
	if err != nil {
		return 0, err
	}
	// fee-on-transfer collateral delivers less than requested; reprice the
	// debt against what actually arrived
	if received.Cmp(net) < 0 {
		debtOut = fixed.MulDiv(debtOut, received, net)
		if debtOut.Sign() == 0 || (minDebtOut != nil && debtOut.Cmp(minDebtOut) < 0) {
			// unwind the deposit, the purchase is all-or-nothing
			if _, _, berr := m.ledger.Burn(account, shares); berr != nil {
				return 0, berr
			}
			return 0, reverts.CapacityExceeded("received amount prices below minimum")
		}
	}
	// collect the fee only once the deposit has landed, unwinding the whole
	// purchase if the fee leg fails
	if fee != nil {
		if _, err := m.ledger.Token().Transfer(account, feeTo, fee); err != nil {
			if _, _, berr := m.ledger.Burn(account, shares); berr != nil {
				return 0, berr
			}
			return 0, err
		}
	}

	m.capacity.Sub(m.capacity, debtOut)
	m.debt.Add(now, debtOut)
	m.vesting.Add(now, shares)

	id := e.ids.Mint(account)
	e.bonds[id] = &Bond{
		market:    tokenID,
		principal: shares,
		debt:      debtOut,
		timestamp: now,
	}

	purchaseCounter().Add(1)
	logger.Debug("bond purchased", "id", id, "account", account, "debt", debtOut, "price", price)
	return id, nil
}

// Redeem settles a bond position. After the vesting period (measured from the
// bond's own purchase time) amount must be zero and the full debt matures.
// Before that, amount withdraws part of the still-unvested principal, giving
// up the corresponding debt immediately.
func (e *Engine) Redeem(account gysr.Address, id uint64, amount *big.Int) (*Redemption, error) {
	b, ok := e.bonds[id]
	if !ok {
		return nil, reverts.InvalidInput("unknown bond id %d", id)
	}
	owner, err := e.ids.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	if owner != account {
		return nil, reverts.Unauthorized("caller does not own bond %d", id)
	}
	m := e.markets[b.market]
	now := e.now()
	m.settle(now, e.cfg.AdjustmentCooldown)

	elapsed := now - b.timestamp
	if elapsed >= e.cfg.VestingPeriod {
		if amount != nil && amount.Sign() != 0 {
			return nil, reverts.StateConflict("vesting complete, redeem with zero amount")
		}
		out := &Redemption{
			DebtOut:   fixed.Clone(b.debt),
			Forfeited: new(big.Int),
			Principal: new(big.Int),
			Closed:    true,
		}
		if err := e.ids.Burn(id); err != nil {
			return nil, err
		}
		delete(e.bonds, id)
		logger.Debug("bond matured", "id", id, "debt", out.DebtOut)
		return out, nil
	}

	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.InvalidInput("amount required before vesting completes")
	}
	period := new(big.Int).SetUint64(e.cfg.VestingPeriod)
	left := new(big.Int).SetUint64(e.cfg.VestingPeriod - elapsed)
	accessible := fixed.MulDiv(b.principal, left, period)
	accessibleTokens := m.ledger.TokensFor(accessible)
	if amount.Cmp(accessibleTokens) > 0 {
		return nil, reverts.InsufficientBalance("amount exceeds unvested principal")
	}

	burnShares := fixed.MulDiv(accessible, amount, accessibleTokens)
	returned, _, err := m.ledger.Burn(account, burnShares)
	if err != nil {
		return nil, err
	}

	forfeit := fixed.MulDiv(b.debt, burnShares, accessible)
	// per-bond debt is a static snapshot while the market total decays, so
	// the pro-rata forfeiture can exceed what is still outstanding
	if _, rerr := m.debt.Remove(now, fixed.Min(forfeit, m.debt.Remaining(now))); rerr != nil {
		return nil, rerr
	}
	if _, rerr := m.vesting.Remove(now, fixed.Min(burnShares, m.vesting.Remaining(now))); rerr != nil {
		return nil, rerr
	}

	b.debt.Sub(b.debt, forfeit)
	b.principal = fixed.MulDiv(b.principal, new(big.Int).Sub(accessible, burnShares), accessible)

	out := &Redemption{
		DebtOut:   new(big.Int),
		Forfeited: forfeit,
		Principal: returned,
	}
	if b.debt.Sign() == 0 && b.principal.Sign() == 0 {
		if err := e.ids.Burn(id); err != nil {
			return nil, err
		}
		delete(e.bonds, id)
		out.Closed = true
	}
	logger.Debug("bond redeemed early", "id", id, "principal", returned, "forfeited", forfeit)
	return out, nil
}

// Adjust reprices an open market. The new price and coefficient glide in over
// the cooldown window; capacity and the per-bond cap reset immediately. A
// pending adjustment is replaced.
func (e *Engine) Adjust(caller, tokenID gysr.Address, price, coeff, max, capacity *big.Int) error {
	if caller != e.owner {
		return reverts.Unauthorized("caller is not the engine owner")
	}
	m, ok := e.markets[tokenID]
	if !ok {
		return reverts.StateConflict("no market for %s", tokenID)
	}
	if price == nil || price.Sign() <= 0 {
		return reverts.InvalidInput("zero market price")
	}
	if max == nil || max.Sign() <= 0 {
		return reverts.InvalidInput("zero bond size cap")
	}
	if capacity == nil || capacity.Sign() <= 0 {
		return reverts.InvalidInput("zero market capacity")
	}
	if coeff == nil || coeff.Sign() < 0 {
		return reverts.InvalidInput("negative price coefficient")
	}
	now := e.now()
	m.settle(now, e.cfg.AdjustmentCooldown)

	fromPrice, fromCoeff := m.params(now, e.cfg.AdjustmentCooldown)
	m.adj = &Adjustment{
		fromPrice: fromPrice,
		fromCoeff: fromCoeff,
		toPrice:   fixed.Clone(price),
		toCoeff:   fixed.Clone(coeff),
		timestamp: now,
	}
	m.max = fixed.Clone(max)
	m.capacity = fixed.Clone(capacity)
	logger.Info("market adjusted", "token", tokenID, "price", price, "capacity", capacity)
	return nil
}

// Withdraw extracts vested principal to the owner-designated recipient.
func (e *Engine) Withdraw(caller, tokenID, to gysr.Address, amount *big.Int) error {
	if caller != e.owner {
		return reverts.Unauthorized("caller is not the engine owner")
	}
	m, ok := e.markets[tokenID]
	if !ok {
		return reverts.StateConflict("no market for %s", tokenID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.InvalidInput("zero withdraw amount")
	}
	now := e.now()
	m.settle(now, e.cfg.AdjustmentCooldown)

	withdrawable := m.ledger.TokensFor(m.vested)
	if amount.Cmp(withdrawable) > 0 {
		return reverts.InsufficientBalance("amount exceeds vested principal")
	}
	shares := fixed.MulDiv(m.vested, amount, withdrawable)
	if _, _, err := m.ledger.Burn(to, shares); err != nil {
		return err
	}
	m.vested.Sub(m.vested, shares)
	logger.Info("principal withdrawn", "token", tokenID, "amount", amount)
	return nil
}

// Transfer moves bond ownership; the decaying principal attribution and debt
// entitlement follow the id.
func (e *Engine) Transfer(from, to gysr.Address, id uint64) error {
	return e.ids.Transfer(from, to, id)
}

// Describe returns the metadata of a bond for external rendering.
func (e *Engine) Describe(id uint64) (*Metadata, error) {
	b, ok := e.bonds[id]
	if !ok {
		return nil, reverts.InvalidInput("unknown bond id %d", id)
	}
	owner, err := e.ids.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	m := e.markets[b.market]
	now := e.now()
	return &Metadata{
		ID:        id,
		Market:    b.market,
		Owner:     owner,
		Principal: m.ledger.TokensFor(b.principal),
		Debt:      fixed.Clone(b.debt),
		Timestamp: b.timestamp,
		Matured:   now-b.timestamp >= e.cfg.VestingPeriod,
	}, nil
}
