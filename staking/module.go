// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the principal-side modules composed by the pool
// orchestrator: a direct token staking module over the share ledger and a
// bond-market module over the bond engine.
package staking

import (
	"math/big"

	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/log"
)

var logger = log.WithContext("pkg", "staking")

// Module is the principal-side capability interface. Operations return the
// staking share delta they produced; the orchestrator forwards it to the
// reward module. The concrete variant is chosen at pool construction and
// fixed for the pool's lifetime.
//
// data carries the module-specific auxiliary arguments (market selector, bond
// id, slippage floor); malformed data is an InvalidInput revert before any
// state change.
type Module interface {
	// Tokens lists the stakeable token ids.
	Tokens() []gysr.Address

	// Stake deposits amount for the account and returns the shares created.
	Stake(account gysr.Address, amount *big.Int, data any) (*big.Int, error)

	// Unstake withdraws amount for the account and returns the shares
	// consumed.
	Unstake(account gysr.Address, amount *big.Int, data any) (*big.Int, error)

	// Claim returns the shares backing amount without moving principal, so
	// the orchestrator can run a reward claim against them.
	Claim(account gysr.Address, amount *big.Int, data any) (*big.Int, error)

	// Update performs account-scoped maintenance.
	Update(account gysr.Address, data any) error

	// Balance reports the account's withdrawable token amount.
	Balance(account gysr.Address) *big.Int

	// Totals reports the total staked token amount.
	Totals() *big.Int
}
