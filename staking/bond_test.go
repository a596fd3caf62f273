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

	"github.com/gysr-io/core-go/bond"
	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
	"github.com/gysr-io/core-go/token"
)

var (
	bondOwner = gysr.MustParseAddress("0x0000000000000000000000000000000000000012")
	bondTkn   = gysr.MustParseAddress("0x000000000000000000000000000000000000c101")
	bondVlt   = gysr.MustParseAddress("0x0000000000000000000000000000000000000602")
)

func wadTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixed.Unit)
}

func newBondModule(t *testing.T) (*Bond, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	engine, err := bond.NewEngine(clock, bondOwner, nil, bond.Config{VestingPeriod: 100})
	require.NoError(t, err)

	tok := token.NewMemToken(18)
	tok.Mint(alice, wadTokens(1000))
	require.NoError(t, engine.Open(bondOwner, bondTkn, share.New(tok, bondVlt),
		fixed.Clone(fixed.Unit), new(big.Int), wadTokens(200), wadTokens(500)))
	return NewBond(engine), clock
}

func TestBondStakePurchases(t *testing.T) {
	m, _ := newBondModule(t)

	_, err := m.Stake(alice, wadTokens(100), nil)
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))

	shares, err := m.Stake(alice, wadTokens(100), &BondStakeData{Market: bondTkn})
	require.NoError(t, err)
	assert.Equal(t, wadTokens(100), shares)
	assert.Equal(t, wadTokens(100), m.Balance(alice))
	assert.Equal(t, wadTokens(100), m.Totals())
	assert.Equal(t, []gysr.Address{bondTkn}, m.Tokens())
}

func TestBondUnstakeAtMaturity(t *testing.T) {
	m, clock := newBondModule(t)

	_, err := m.Stake(alice, wadTokens(100), &BondStakeData{Market: bondTkn})
	require.NoError(t, err)
	ids := m.Engine().Registry().Owned(alice)
	require.Len(t, ids, 1)

	clock.Advance(100 * time.Second)
	shares, err := m.Unstake(alice, nil, &BondData{ID: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, wadTokens(100), shares)
	assert.Empty(t, m.Engine().Registry().Owned(alice))
}

func TestBondUnstakeEarlyForfeits(t *testing.T) {
	m, clock := newBondModule(t)

	_, err := m.Stake(alice, wadTokens(100), &BondStakeData{Market: bondTkn})
	require.NoError(t, err)
	ids := m.Engine().Registry().Owned(alice)

	clock.Advance(50 * time.Second)
	shares, err := m.Unstake(alice, wadTokens(25), &BondData{ID: ids[0]})
	require.NoError(t, err)
	// half the accessible principal exits, forfeiting half the debt
	assert.Equal(t, wadTokens(50), shares)
}

func TestBondClaimResolvesDebt(t *testing.T) {
	m, _ := newBondModule(t)

	_, err := m.Stake(alice, wadTokens(100), &BondStakeData{Market: bondTkn})
	require.NoError(t, err)
	ids := m.Engine().Registry().Owned(alice)

	shares, err := m.Claim(alice, nil, &BondData{ID: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, wadTokens(100), shares)

	_, err = m.Claim(bob, nil, &BondData{ID: ids[0]})
	assert.True(t, reverts.IsKind(err, reverts.KindUnauthorized))

	_, err = m.Claim(alice, nil, &BondData{ID: 999})
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))
}
