// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/gysr-io/core-go/bond"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
)

// BondStakeData selects the market and slippage floor for a bond purchase.
type BondStakeData struct {
	Market     gysr.Address
	MinDebtOut *big.Int
}

// BondData names a bond for unstake and claim.
type BondData struct {
	ID uint64
}

// Bond adapts the bond engine to the staking capability interface: staking is
// a bond purchase, the purchased debt acts as the position's staking shares,
// and unstaking redeems against the bond.
type Bond struct {
	engine *bond.Engine
}

// NewBond creates a staking module over the bond engine.
func NewBond(engine *bond.Engine) *Bond {
	return &Bond{engine: engine}
}

// Engine exposes the underlying bond engine for market administration.
func (m *Bond) Engine() *bond.Engine {
	return m.engine
}

// Tokens implements Module: the collateral tokens with open markets.
func (m *Bond) Tokens() []gysr.Address {
	return m.engine.Markets()
}

// Stake implements Module: purchases a bond, returning the debt as shares.
func (m *Bond) Stake(account gysr.Address, amount *big.Int, data any) (*big.Int, error) {
	d, ok := data.(*BondStakeData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed bond stake data")
	}
	id, err := m.engine.Purchase(account, d.Market, amount, d.MinDebtOut)
	if err != nil {
		return nil, err
	}
	meta, err := m.engine.Describe(id)
	if err != nil {
		return nil, err
	}
	logger.Debug("bond stake", "account", account, "bond", id, "debt", meta.Debt)
	return meta.Debt, nil
}

// Unstake implements Module: redeems against the named bond. A zero amount
// performs the full redemption of a matured bond; before maturity the amount
// withdraws unvested principal. The returned share delta covers both matured
// and forfeited debt so the orchestrator can close out reward accounting.
func (m *Bond) Unstake(account gysr.Address, amount *big.Int, data any) (*big.Int, error) {
	d, ok := data.(*BondData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed bond data")
	}
	r, err := m.engine.Redeem(account, d.ID, amount)
	if err != nil {
		return nil, err
	}
	shares := new(big.Int).Add(r.DebtOut, r.Forfeited)
	logger.Debug("bond unstake", "account", account, "bond", d.ID, "shares", shares, "principal", r.Principal)
	return shares, nil
}

// Claim implements Module: resolves the named bond's debt to shares without
// touching the bond, so rewards can be claimed against it. amount is unused;
// bond claims are whole-position.
func (m *Bond) Claim(account gysr.Address, _ *big.Int, data any) (*big.Int, error) {
	d, ok := data.(*BondData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed bond data")
	}
	meta, err := m.engine.Describe(d.ID)
	if err != nil {
		return nil, err
	}
	if meta.Owner != account {
		return nil, reverts.Unauthorized("caller does not own bond %d", d.ID)
	}
	return fixed.Clone(meta.Debt), nil
}

// Update implements Module; bond state settles lazily inside the engine.
func (m *Bond) Update(_ gysr.Address, _ any) error {
	return nil
}

// Balance implements Module: the token value of the account's remaining bond
// principal across all markets.
func (m *Bond) Balance(account gysr.Address) *big.Int {
	total := new(big.Int)
	for _, id := range m.engine.Registry().Owned(account) {
		meta, err := m.engine.Describe(id)
		if err != nil {
			continue
		}
		total.Add(total, meta.Principal)
	}
	return total
}

// Totals implements Module: the pooled collateral across all markets.
func (m *Bond) Totals() *big.Int {
	total := new(big.Int)
	for _, id := range m.engine.Markets() {
		total.Add(total, m.engine.Market(id).Ledger().TotalBalance())
	}
	return total
}

var _ Module = (*Bond)(nil)
