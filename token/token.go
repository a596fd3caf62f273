// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/gysr-io/core-go/gysr"
)

// Token is the transfer collaborator consumed by the accounting core.
//
// Implementations may deliver less than the requested amount (fee-on-transfer)
// and may change reported balances without any transfer (rebasing). The core
// never trusts the requested amount: it measures balances around transfers.
// A failed transfer moves nothing.
type Token interface {
	// Decimals returns the token's native decimal scale.
	Decimals() uint8

	// BalanceOf returns the current balance of the holder. Never cached by
	// callers across mutating operations.
	BalanceOf(holder gysr.Address) *big.Int

	// Transfer moves amount from one holder to another and returns the amount
	// actually credited to the recipient, which may be less than requested.
	Transfer(from, to gysr.Address, amount *big.Int) (*big.Int, error)
}
