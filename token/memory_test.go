// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
)

var (
	alice = gysr.BytesToAddress([]byte("alice"))
	bob   = gysr.BytesToAddress([]byte("bob"))
)

func TestMemTokenTransfer(t *testing.T) {
	tok := NewMemToken(18)
	tok.Mint(alice, big.NewInt(1000))

	sent, err := tok.Transfer(alice, bob, big.NewInt(400))
	require.NoError(t, err)
	assert.Equal(t, int64(400), sent.Int64())
	assert.Equal(t, int64(600), tok.BalanceOf(alice).Int64())
	assert.Equal(t, int64(400), tok.BalanceOf(bob).Int64())
}

func TestMemTokenInsufficient(t *testing.T) {
	tok := NewMemToken(18)
	tok.Mint(alice, big.NewInt(10))

	_, err := tok.Transfer(alice, bob, big.NewInt(11))
	assert.True(t, reverts.IsKind(err, reverts.KindInsufficientBalance))
	// nothing moved
	assert.Equal(t, int64(10), tok.BalanceOf(alice).Int64())
	assert.Equal(t, int64(0), tok.BalanceOf(bob).Int64())
}

func TestFeeTokenTransfer(t *testing.T) {
	tok := NewFeeToken(18, 200) // 2%
	tok.Mint(alice, big.NewInt(1000))

	sent, err := tok.Transfer(alice, bob, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, int64(490), sent.Int64())
	assert.Equal(t, int64(500), tok.BalanceOf(alice).Int64())
	assert.Equal(t, int64(490), tok.BalanceOf(bob).Int64())
}

func TestElasticTokenRebase(t *testing.T) {
	tok := NewElasticToken(18)
	tok.Mint(alice, big.NewInt(100))
	assert.Equal(t, int64(100), tok.BalanceOf(alice).Int64())

	// expand supply by 1.1x
	coeff := new(big.Int).Div(new(big.Int).Mul(fixed.Unit, big.NewInt(11)), big.NewInt(10))
	tok.Rebase(coeff)
	assert.Equal(t, int64(110), tok.BalanceOf(alice).Int64())

	// transfers after rebase move external units
	_, err := tok.Transfer(alice, bob, big.NewInt(55))
	require.NoError(t, err)
	assert.Equal(t, int64(55), tok.BalanceOf(alice).Int64())
	assert.Equal(t, int64(55), tok.BalanceOf(bob).Int64())
}
