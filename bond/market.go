// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bond

import (
	"math/big"

	"github.com/gysr-io/core-go/decay"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/share"
)

// Adjustment is a pending linear repricing of an open market. The effective
// price and coefficient glide from the values at adjustment time to the
// targets over the cooldown window; a second adjustment replaces a pending
// one mid-glide.
type Adjustment struct {
	fromPrice *big.Int
	fromCoeff *big.Int
	toPrice   *big.Int
	toCoeff   *big.Int
	timestamp uint64
}

// interpolate returns the effective value of one adjusted parameter at the
// given time.
func interpolate(from, to *big.Int, elapsed, window uint64) *big.Int {
	if window == 0 || elapsed >= window {
		return fixed.Clone(to)
	}
	span := new(big.Int).Sub(to, from)
	step := fixed.MulDiv(span, new(big.Int).SetUint64(elapsed), new(big.Int).SetUint64(window))
	return step.Add(step, from)
}

// Market sells discounted debt against one collateral token. The sale price
// rises linearly in outstanding debt and recovers as debt decays; deposited
// principal vests to the market owner over the same window, with the vesting
// clock restarting on every purchase.
type Market struct {
	ledger *share.Ledger

	price *big.Int // wad base price, collateral per debt unit
	coeff *big.Int // wad price increase per unit of outstanding debt
	max   *big.Int // per-bond debt cap

	capacity *big.Int        // remaining sellable debt
	debt     *decay.Burndown // outstanding debt
	vesting  *decay.Burndown // unvested principal shares
	vested   *big.Int        // vested principal shares, withdrawable

	adj *Adjustment
}

// Ledger returns the market's collateral share ledger.
func (m *Market) Ledger() *share.Ledger {
	return m.ledger
}

// Capacity returns the remaining sellable debt.
func (m *Market) Capacity() *big.Int {
	return fixed.Clone(m.capacity)
}

// Debt returns the outstanding debt at the given time.
func (m *Market) Debt(now uint64) *big.Int {
	return m.debt.Remaining(now)
}

// VestedShares returns the owner-withdrawable principal shares, including
// vesting progress up to the given time.
func (m *Market) VestedShares(now uint64) *big.Int {
	return new(big.Int).Add(m.vested, m.vesting.Released(now))
}

// params returns the effective base price and coefficient at the given time,
// applying any pending adjustment glide.
func (m *Market) params(now, window uint64) (price, coeff *big.Int) {
	if m.adj == nil {
		return fixed.Clone(m.price), fixed.Clone(m.coeff)
	}
	elapsed := uint64(0)
	if now > m.adj.timestamp {
		elapsed = now - m.adj.timestamp
	}
	price = interpolate(m.adj.fromPrice, m.adj.toPrice, elapsed, window)
	coeff = interpolate(m.adj.fromCoeff, m.adj.toCoeff, elapsed, window)
	return price, coeff
}

// CurrentPrice computes the sale price at the given time:
// basePrice + coeff * outstandingDebt, wad.
func (m *Market) CurrentPrice(now, window uint64) *big.Int {
	price, coeff := m.params(now, window)
	return price.Add(price, fixed.WadMul(coeff, m.Debt(now)))
}

// settle advances the market's time-dependent state: principal vesting moves
// released shares to the withdrawable bucket, outstanding debt decays, and a
// completed adjustment glide becomes the new resting parameters. Invoked at
// the top of every mutator.
func (m *Market) settle(now, window uint64) {
	m.vested.Add(m.vested, m.vesting.Settle(now))
	m.debt.Settle(now)
	if m.adj != nil && now >= m.adj.timestamp+window {
		m.price = fixed.Clone(m.adj.toPrice)
		m.coeff = fixed.Clone(m.adj.toCoeff)
		m.adj = nil
	}
}
