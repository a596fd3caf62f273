// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/gysr"
)

func TestMemRegistry(t *testing.T) {
	reg := NewMemRegistry()
	treasury := gysr.MustParseAddress("0x00000000000000000000000000000000000000fe")

	_, ok := reg.Get(KeySpendFee)
	assert.False(t, ok)

	reg.Set(KeySpendFee, treasury, big.NewInt(200))
	e, ok := reg.Get(KeySpendFee)
	require.True(t, ok)
	assert.Equal(t, treasury, e.Recipient)
	assert.Equal(t, big.NewInt(200), e.Rate)

	// returned entry is a copy
	e.Rate.SetInt64(999)
	e, _ = reg.Get(KeySpendFee)
	assert.Equal(t, big.NewInt(200), e.Rate)
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`
entries:
  - key: gysr.spend.fee
    recipient: "0x00000000000000000000000000000000000000fe"
    rate: "0.2"
  - key: bond.purchase.fee
    rate: "0.005"
`)
	reg, err := Parse(doc)
	require.NoError(t, err)

	e, ok := reg.Get(KeySpendFee)
	require.True(t, ok)
	assert.Equal(t, "200000000000000000", e.Rate.String())
	assert.False(t, e.Recipient.IsZero())

	e, ok = reg.Get(KeyBondFee)
	require.True(t, ok)
	assert.Equal(t, "5000000000000000", e.Rate.String())
	assert.True(t, e.Recipient.IsZero())
}

func TestParseYAMLErrors(t *testing.T) {
	_, err := Parse([]byte("entries:\n  - rate: \"0.1\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("entries:\n  - key: x\n    rate: \"-0.1\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("entries:\n  - key: x\n    recipient: \"nope\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not yaml: ["))
	assert.Error(t, err)
}
