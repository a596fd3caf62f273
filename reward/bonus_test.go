// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/fixed"
)

func TestSpendBonusZeroSpend(t *testing.T) {
	bonus, err := SpendBonus(new(big.Int), new(big.Int), DefaultGysrWeight)
	require.NoError(t, err)
	assert.Equal(t, fixed.Unit, bonus)
}

func TestSpendBonusKnownValue(t *testing.T) {
	// with usage 0 and weight w, spend of 9*w^2 makes the log argument
	// exactly 10, so the multiplier is exactly 2
	w := fixed.Clone(DefaultGysrWeight)
	spent := new(big.Int).Mul(big.NewInt(9), fixed.MulDiv(w, w, fixed.Unit))
	bonus, err := SpendBonus(spent, new(big.Int), w)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(2), fixed.Unit), bonus)
}

func TestSpendBonusMonotonic(t *testing.T) {
	small, err := SpendBonus(fixed.Unit, new(big.Int), DefaultGysrWeight)
	require.NoError(t, err)
	large, err := SpendBonus(new(big.Int).Mul(fixed.Unit, big.NewInt(100)), new(big.Int), DefaultGysrWeight)
	require.NoError(t, err)
	assert.Equal(t, 1, small.Cmp(fixed.Unit))
	assert.Equal(t, 1, large.Cmp(small))
}

func TestSpendBonusUsageDampens(t *testing.T) {
	spent := new(big.Int).Mul(fixed.Unit, big.NewInt(10))
	empty, err := SpendBonus(spent, new(big.Int), DefaultGysrWeight)
	require.NoError(t, err)
	half := new(big.Int).Div(fixed.Unit, big.NewInt(2))
	crowded, err := SpendBonus(spent, half, DefaultGysrWeight)
	require.NoError(t, err)
	assert.Equal(t, 1, empty.Cmp(crowded))
}

func TestUsageRatio(t *testing.T) {
	assert.Equal(t, int64(0), usageRatio(new(big.Int), new(big.Int)).Int64())

	// no boosting: ratio zero
	assert.Equal(t, int64(0), usageRatio(big.NewInt(100), big.NewInt(100)).Int64())

	// weight 200 from 100 raw shares: half the weight is boost
	half := new(big.Int).Div(fixed.Unit, big.NewInt(2))
	assert.Equal(t, half, usageRatio(big.NewInt(200), big.NewInt(100)))
}
