// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package share

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/token"
)

// InitialSharesPerToken sets the exchange rate for the first deposit:
// 1 token unit mints 1e6 shares. The extra resolution keeps pro-rata math
// precise for indivisible and low-decimal tokens.
var InitialSharesPerToken = big.NewInt(1_000_000)

// Ledger converts token amounts to dimensionless shares at a pool-wide
// exchange rate. The rate only moves via explicit Mint/Burn; the underlying
// token balance is re-queried from the token on every operation and never
// cached, so rebasing tokens change every holder's token-equivalent balance
// proportionally with no bookkeeping event here.
//
// Ledger is not safe for concurrent use; the owning module serializes access.
type Ledger struct {
	token token.Token
	vault gysr.Address
	total *big.Int
}

// New creates a ledger over the token balance held by the vault account.
func New(tok token.Token, vault gysr.Address) *Ledger {
	return &Ledger{
		token: tok,
		vault: vault,
		total: new(big.Int),
	}
}

// Token returns the underlying token collaborator.
func (l *Ledger) Token() token.Token {
	return l.token
}

// Vault returns the account holding the pooled tokens.
func (l *Ledger) Vault() gysr.Address {
	return l.vault
}

// TotalShares returns the outstanding share count.
func (l *Ledger) TotalShares() *big.Int {
	return fixed.Clone(l.total)
}

// TotalBalance queries the pooled token balance. Always fresh.
func (l *Ledger) TotalBalance() *big.Int {
	return l.token.BalanceOf(l.vault)
}

// SharesFor previews the shares a deposit of amount would mint at the current
// rate, without moving tokens. Rounds down.
func (l *Ledger) SharesFor(amount *big.Int) *big.Int {
	if l.total.Sign() == 0 {
		return new(big.Int).Mul(amount, InitialSharesPerToken)
	}
	bal := l.TotalBalance()
	if bal.Sign() == 0 {
		return new(big.Int).Mul(amount, InitialSharesPerToken)
	}
	return fixed.MulDiv(l.total, amount, bal)
}

// TokensFor previews the token amount shares redeem for at the current rate.
// Rounds down.
func (l *Ledger) TokensFor(shares *big.Int) *big.Int {
	if l.total.Sign() == 0 {
		return new(big.Int)
	}
	return fixed.MulDiv(l.TotalBalance(), shares, l.total)
}

// Mint transfers amount in from the depositor and mints shares against the
// amount actually received, at the pre-transfer exchange rate. Returns the
// minted shares and the received token amount.
func (l *Ledger) Mint(from gysr.Address, amount *big.Int) (*big.Int, *big.Int, error) {
	if fixed.IsZero(amount) {
		return nil, nil, reverts.InvalidInput("zero deposit amount")
	}

	before := l.TotalBalance()
	if _, err := l.token.Transfer(from, l.vault, amount); err != nil {
		return nil, nil, errors.Wrap(err, "ledger mint")
	}
	received := new(big.Int).Sub(l.TotalBalance(), before)
	if received.Sign() <= 0 {
		return nil, nil, reverts.InvalidInput("deposit received nothing")
	}

	var shares *big.Int
	if l.total.Sign() == 0 || before.Sign() == 0 {
		shares = new(big.Int).Mul(received, InitialSharesPerToken)
	} else {
		shares = fixed.MulDiv(l.total, received, before)
	}
	if shares.Sign() == 0 {
		return nil, nil, reverts.InvalidInput("deposit too small for one share")
	}

	l.total.Add(l.total, shares)
	return shares, received, nil
}

// Burn redeems shares for tokens at the current rate and transfers them out.
// Returns the redeemed token amount and the amount actually sent.
func (l *Ledger) Burn(to gysr.Address, shares *big.Int) (*big.Int, *big.Int, error) {
	if fixed.IsZero(shares) {
		return nil, nil, reverts.InvalidInput("zero share burn")
	}
	if shares.Cmp(l.total) > 0 {
		return nil, nil, reverts.InsufficientBalance("burn exceeds total shares")
	}

	amount := fixed.MulDiv(l.TotalBalance(), shares, l.total)

	// settle shares before moving tokens so a reentrant balance query can
	// never see the old share supply against the new balance
	l.total.Sub(l.total, shares)

	if amount.Sign() == 0 {
		return new(big.Int), new(big.Int), nil
	}

	before := l.TotalBalance()
	if _, err := l.token.Transfer(l.vault, to, amount); err != nil {
		// roll back the share burn, the operation is all-or-nothing
		l.total.Add(l.total, shares)
		return nil, nil, errors.Wrap(err, "ledger burn")
	}
	sent := new(big.Int).Sub(before, l.TotalBalance())
	return amount, sent, nil
}
