// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"sync"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
)

// MemToken is a plain in-memory token ledger. It backs tests and the demo CLI.
type MemToken struct {
	mu       sync.RWMutex
	decimals uint8
	balances map[gysr.Address]*big.Int
}

func NewMemToken(decimals uint8) *MemToken {
	return &MemToken{
		decimals: decimals,
		balances: make(map[gysr.Address]*big.Int),
	}
}

func (t *MemToken) Decimals() uint8 {
	return t.decimals
}

// Mint credits new supply to the holder.
func (t *MemToken) Mint(to gysr.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
}

func (t *MemToken) BalanceOf(holder gysr.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fixed.Clone(t.balances[holder])
}

func (t *MemToken) Transfer(from, to gysr.Address, amount *big.Int) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return nil, err
	}
	t.credit(to, amount)
	return fixed.Clone(amount), nil
}

func (t *MemToken) credit(to gysr.Address, amount *big.Int) {
	bal, ok := t.balances[to]
	if !ok {
		bal = new(big.Int)
		t.balances[to] = bal
	}
	bal.Add(bal, amount)
}

func (t *MemToken) debit(from gysr.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.InvalidInput("negative transfer amount")
	}
	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return reverts.InsufficientBalance("balance below transfer amount")
	}
	bal.Sub(bal, amount)
	return nil
}

// FeeToken charges a basis-point fee on every transfer; the recipient is
// credited less than the sender gives up.
type FeeToken struct {
	*MemToken
	feeBps int64
}

func NewFeeToken(decimals uint8, feeBps int64) *FeeToken {
	return &FeeToken{
		MemToken: NewMemToken(decimals),
		feeBps:   feeBps,
	}
}

func (t *FeeToken) Transfer(from, to gysr.Address, amount *big.Int) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return nil, err
	}
	fee := fixed.MulDiv(amount, big.NewInt(t.feeBps), big.NewInt(10000))
	delivered := new(big.Int).Sub(amount, fee)
	t.credit(to, delivered)
	return delivered, nil
}

// ElasticToken is a rebasing token: balances are kept in fixed internal units
// and scaled by a wad coefficient on the way out, so a rebase changes every
// reported balance without any transfer event.
type ElasticToken struct {
	mu       sync.RWMutex
	decimals uint8
	scalar   *big.Int // wad
	base     map[gysr.Address]*big.Int
}

func NewElasticToken(decimals uint8) *ElasticToken {
	return &ElasticToken{
		decimals: decimals,
		scalar:   fixed.Clone(fixed.Unit),
		base:     make(map[gysr.Address]*big.Int),
	}
}

func (t *ElasticToken) Decimals() uint8 {
	return t.decimals
}

// Mint credits new supply, stated in external units at the current scale.
func (t *ElasticToken) Mint(to gysr.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := fixed.MulDivUp(amount, fixed.Unit, t.scalar)
	bal, ok := t.base[to]
	if !ok {
		bal = new(big.Int)
		t.base[to] = bal
	}
	bal.Add(bal, b)
}

// Rebase scales all balances by a wad coefficient (1.1e18 expands supply 10%).
func (t *ElasticToken) Rebase(coeff *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scalar = fixed.WadMul(t.scalar, coeff)
}

func (t *ElasticToken) BalanceOf(holder gysr.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bal := t.base[holder]
	if bal == nil {
		return new(big.Int)
	}
	return fixed.WadMul(bal, t.scalar)
}

func (t *ElasticToken) Transfer(from, to gysr.Address, amount *big.Int) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if amount.Sign() < 0 {
		return nil, reverts.InvalidInput("negative transfer amount")
	}
	b := fixed.MulDivUp(amount, fixed.Unit, t.scalar)
	bal := t.base[from]
	if bal == nil || bal.Cmp(b) < 0 {
		return nil, reverts.InsufficientBalance("balance below transfer amount")
	}
	bal.Sub(bal, b)
	dst, ok := t.base[to]
	if !ok {
		dst = new(big.Int)
		t.base[to] = dst
	}
	dst.Add(dst, b)
	return fixed.WadMul(b, t.scalar), nil
}
