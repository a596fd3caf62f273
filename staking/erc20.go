// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/jonboulle/clockwork"

	"github.com/gysr-io/core-go/decay"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
)

// ERC20Config parameterizes the direct token staking module.
type ERC20Config struct {
	// BurndownPeriod enables the burndown presentation mode: each account's
	// displayed locked balance decays to zero over this window following
	// their most recent stake. Zero disables it; the full balance is then
	// always shown as unlocked. Burndown never gates withdrawal.
	BurndownPeriod uint64
}

// ERC20 stakes a single transferable token through the share ledger.
type ERC20 struct {
	clock    clockwork.Clock
	tokenID  gysr.Address
	ledger   *share.Ledger
	cfg      ERC20Config
	balances map[gysr.Address]*big.Int
	locked   map[gysr.Address]*decay.Burndown
}

// NewERC20 creates a staking module over the ledger's token.
func NewERC20(clock clockwork.Clock, tokenID gysr.Address, ledger *share.Ledger, cfg ERC20Config) *ERC20 {
	return &ERC20{
		clock:    clock,
		tokenID:  tokenID,
		ledger:   ledger,
		cfg:      cfg,
		balances: make(map[gysr.Address]*big.Int),
		locked:   make(map[gysr.Address]*decay.Burndown),
	}
}

func (m *ERC20) now() uint64 {
	return uint64(m.clock.Now().Unix())
}

// Tokens implements Module.
func (m *ERC20) Tokens() []gysr.Address {
	return []gysr.Address{m.tokenID}
}

// Ledger exposes the staking share ledger.
func (m *ERC20) Ledger() *share.Ledger {
	return m.ledger
}

// Shares returns the account's staking shares.
func (m *ERC20) Shares(account gysr.Address) *big.Int {
	return fixed.Clone(m.balances[account])
}

// Stake implements Module: mints shares against the deposited amount.
func (m *ERC20) Stake(account gysr.Address, amount *big.Int, data any) (*big.Int, error) {
	if data != nil {
		return nil, reverts.InvalidInput("unexpected stake data")
	}
	shares, received, err := m.ledger.Mint(account, amount)
	if err != nil {
		return nil, err
	}
	bal, ok := m.balances[account]
	if !ok {
		bal = new(big.Int)
		m.balances[account] = bal
	}
	bal.Add(bal, shares)

	if m.cfg.BurndownPeriod > 0 {
		bd, ok := m.locked[account]
		if !ok {
			bd = decay.New(m.cfg.BurndownPeriod)
			m.locked[account] = bd
		}
		// each stake restarts the account's burndown clock
		bd.Add(m.now(), shares)
	}

	logger.Debug("stake", "account", account, "amount", received, "shares", shares)
	return shares, nil
}

// sharesFor converts a token amount to the account's share equivalent,
// pro-rata against the account's current holding.
func (m *ERC20) sharesFor(account gysr.Address, amount *big.Int) (*big.Int, error) {
	bal := m.balances[account]
	if bal == nil || bal.Sign() == 0 {
		return nil, reverts.InsufficientBalance("no staked balance")
	}
	held := m.ledger.TokensFor(bal)
	if amount.Cmp(held) > 0 {
		return nil, reverts.InsufficientBalance("amount exceeds staked balance")
	}
	return fixed.MulDiv(bal, amount, held), nil
}

// Unstake implements Module: burns shares pro-rata and returns the tokens.
func (m *ERC20) Unstake(account gysr.Address, amount *big.Int, data any) (*big.Int, error) {
	if data != nil {
		return nil, reverts.InvalidInput("unexpected unstake data")
	}
	if fixed.IsZero(amount) {
		return nil, reverts.InvalidInput("zero unstake amount")
	}
	shares, err := m.sharesFor(account, amount)
	if err != nil {
		return nil, err
	}
	if _, _, err := m.ledger.Burn(account, shares); err != nil {
		return nil, err
	}
	bal := m.balances[account]
	bal.Sub(bal, shares)
	if bal.Sign() == 0 {
		delete(m.balances, account)
	}

	if bd, ok := m.locked[account]; ok {
		// an exit consumes locked shares first; the remainder was already
		// released by decay
		still := bd.Remaining(m.now())
		if _, err := bd.Remove(m.now(), fixed.Min(shares, still)); err != nil {
			return nil, err
		}
	}

	logger.Debug("unstake", "account", account, "amount", amount, "shares", shares)
	return shares, nil
}

// Claim implements Module: resolves amount to shares without moving tokens.
func (m *ERC20) Claim(account gysr.Address, amount *big.Int, data any) (*big.Int, error) {
	if data != nil {
		return nil, reverts.InvalidInput("unexpected claim data")
	}
	if fixed.IsZero(amount) {
		return nil, reverts.InvalidInput("zero claim amount")
	}
	return m.sharesFor(account, amount)
}

// Update implements Module; the direct module has no time-dependent state
// beyond the burndown presentation, which settles lazily on read.
func (m *ERC20) Update(_ gysr.Address, _ any) error {
	return nil
}

// Balance implements Module: the account's token-equivalent holding, fresh
// against the current ledger rate (so rebases show through).
func (m *ERC20) Balance(account gysr.Address) *big.Int {
	bal := m.balances[account]
	if bal == nil {
		return new(big.Int)
	}
	return m.ledger.TokensFor(bal)
}

// Locked previews the account's still-decaying balance in token terms. Zero
// when burndown mode is disabled.
func (m *ERC20) Locked(account gysr.Address) *big.Int {
	bd, ok := m.locked[account]
	if !ok {
		return new(big.Int)
	}
	return m.ledger.TokensFor(bd.Remaining(m.now()))
}

// Totals implements Module.
func (m *ERC20) Totals() *big.Int {
	return m.ledger.TotalBalance()
}

var _ Module = (*ERC20)(nil)
