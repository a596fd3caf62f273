// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
)

var (
	alice = gysr.MustParseAddress("0x00000000000000000000000000000000000000a1")
	bob   = gysr.MustParseAddress("0x00000000000000000000000000000000000000b2")
)

func TestRegistryMintAndOwnership(t *testing.T) {
	r := NewRegistry()

	id1 := r.Mint(alice)
	id2 := r.Mint(alice)
	id3 := r.Mint(bob)
	assert.Equal(t, []uint64{id1, id2}, r.Owned(alice))
	assert.Equal(t, []uint64{id3}, r.Owned(bob))

	owner, err := r.OwnerOf(id2)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	_, err = r.OwnerOf(999)
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))
}

func TestRegistryBurnSwapRemoves(t *testing.T) {
	r := NewRegistry()
	id1 := r.Mint(alice)
	id2 := r.Mint(alice)
	id3 := r.Mint(alice)

	require.NoError(t, r.Burn(id1))
	// the last id takes the burned slot
	assert.Equal(t, []uint64{id3, id2}, r.Owned(alice))

	require.NoError(t, r.Burn(id3))
	require.NoError(t, r.Burn(id2))
	assert.Empty(t, r.Owned(alice))

	assert.Error(t, r.Burn(id2))
}

func TestRegistryTransfer(t *testing.T) {
	r := NewRegistry()
	id1 := r.Mint(alice)
	id2 := r.Mint(alice)

	err := r.Transfer(bob, alice, id1)
	assert.True(t, reverts.IsKind(err, reverts.KindUnauthorized))

	require.NoError(t, r.Transfer(alice, bob, id1))
	owner, err := r.OwnerOf(id1)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
	assert.Equal(t, []uint64{id2}, r.Owned(alice))
	assert.Equal(t, []uint64{id1}, r.Owned(bob))

	// ids stay stable through further churn
	require.NoError(t, r.Transfer(alice, bob, id2))
	assert.Equal(t, []uint64{id1, id2}, r.Owned(bob))
}
