// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
	"github.com/gysr-io/core-go/token"
)

var (
	alice    = gysr.MustParseAddress("0x00000000000000000000000000000000000000a1")
	bob      = gysr.MustParseAddress("0x00000000000000000000000000000000000000b2")
	stakeTkn = gysr.MustParseAddress("0x000000000000000000000000000000000000d001")
	stakeVlt = gysr.MustParseAddress("0x0000000000000000000000000000000000000601")
)

func newERC20(t *testing.T, tok token.Token, cfg ERC20Config) (*ERC20, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	return NewERC20(clock, stakeTkn, share.New(tok, stakeVlt), cfg), clock
}

func TestERC20StakeUnstakeRoundtrip(t *testing.T) {
	tok := token.NewMemToken(18)
	tok.Mint(alice, big.NewInt(1000))
	m, _ := newERC20(t, tok, ERC20Config{})

	shares, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000_000), shares)
	assert.Equal(t, big.NewInt(100), m.Balance(alice))
	assert.Equal(t, big.NewInt(100), m.Totals())

	shares, err = m.Unstake(alice, big.NewInt(40), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40_000_000), shares)
	assert.Equal(t, big.NewInt(60), m.Balance(alice))
	assert.Equal(t, big.NewInt(940), tok.BalanceOf(alice))

	_, err = m.Unstake(alice, big.NewInt(61), nil)
	assert.True(t, reverts.IsKind(err, reverts.KindInsufficientBalance))

	_, err = m.Unstake(alice, big.NewInt(60), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Shares(alice).Int64())
	assert.Equal(t, big.NewInt(1000), tok.BalanceOf(alice))
}

func TestERC20ElasticToken(t *testing.T) {
	tok := token.NewElasticToken(18)
	tok.Mint(alice, big.NewInt(1000))
	tok.Mint(bob, big.NewInt(1000))
	m, _ := newERC20(t, tok, ERC20Config{})

	shares, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000_000), shares)

	// a 10% expansion changes alice's token-equivalent balance but not her
	// shares
	coeff := new(big.Int).Div(new(big.Int).Mul(fixed.Unit, big.NewInt(11)), big.NewInt(10))
	tok.Rebase(coeff)
	assert.Equal(t, big.NewInt(100_000_000), m.Shares(alice))
	assert.Equal(t, big.NewInt(110), m.Balance(alice))

	// bob buys in at the new rate: fewer shares per token
	shares, err = m.Stake(bob, big.NewInt(110), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000_000), shares)
	assert.Equal(t, big.NewInt(110), m.Balance(bob))
}

func TestERC20FeeOnTransferToken(t *testing.T) {
	tok := token.NewFeeToken(18, 100) // 1% fee
	tok.Mint(alice, big.NewInt(1000))
	m, _ := newERC20(t, tok, ERC20Config{})

	// shares are minted against the 99 actually received
	shares, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(99_000_000), shares)
	assert.Equal(t, big.NewInt(99), m.Balance(alice))
}

func TestERC20Burndown(t *testing.T) {
	tok := token.NewMemToken(18)
	tok.Mint(alice, big.NewInt(1000))
	m, clock := newERC20(t, tok, ERC20Config{BurndownPeriod: 100})

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), m.Locked(alice))

	clock.Advance(50 * time.Second)
	assert.Equal(t, big.NewInt(50), m.Locked(alice))

	// a new stake restarts the clock over the surviving locked amount
	_, err = m.Stake(alice, big.NewInt(50), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), m.Locked(alice))

	clock.Advance(100 * time.Second)
	assert.Equal(t, int64(0), m.Locked(alice).Int64())

	// burndown is presentation only, withdrawal is never gated
	_, err = m.Unstake(alice, big.NewInt(150), nil)
	assert.NoError(t, err)
}

func TestERC20BurndownExitConsumesLock(t *testing.T) {
	tok := token.NewMemToken(18)
	tok.Mint(alice, big.NewInt(1000))
	m, clock := newERC20(t, tok, ERC20Config{BurndownPeriod: 100})

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)

	// halfway through the window only 50 is still locked; an 80 exit clamps
	// to the locked remainder and never trips the burndown accounting
	clock.Advance(50 * time.Second)
	_, err = m.Unstake(alice, big.NewInt(80), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Locked(alice).Int64())

	_, err = m.Unstake(alice, big.NewInt(20), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), tok.BalanceOf(alice))
}

func TestERC20Claim(t *testing.T) {
	tok := token.NewMemToken(18)
	tok.Mint(alice, big.NewInt(1000))
	m, _ := newERC20(t, tok, ERC20Config{})

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)

	shares, err := m.Claim(alice, big.NewInt(50), nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50_000_000), shares)
	// claim moves no tokens
	assert.Equal(t, big.NewInt(100), m.Balance(alice))

	_, err = m.Claim(bob, big.NewInt(1), nil)
	assert.True(t, reverts.IsKind(err, reverts.KindInsufficientBalance))

	_, err = m.Claim(alice, big.NewInt(50), "bogus")
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))
}
