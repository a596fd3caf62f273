// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDivTruncates(t *testing.T) {
	// 1 * 1 / 3 truncates to zero
	assert.Equal(t, int64(0), MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(3)).Int64())
	// 5 * 2 / 3 = 10/3 -> 3
	assert.Equal(t, int64(3), MulDiv(big.NewInt(5), big.NewInt(2), big.NewInt(3)).Int64())
	// exact division has no loss
	assert.Equal(t, int64(10), MulDiv(big.NewInt(5), big.NewInt(4), big.NewInt(2)).Int64())
}

func TestMulDivNoIntermediateOverflow(t *testing.T) {
	// (2^200 * 2^200) / 2^200 == 2^200, far past any machine word
	x := new(big.Int).Lsh(big.NewInt(1), 200)
	assert.Equal(t, 0, MulDiv(x, x, x).Cmp(x))
}

func TestMulDivUp(t *testing.T) {
	assert.Equal(t, int64(1), MulDivUp(big.NewInt(1), big.NewInt(1), big.NewInt(3)).Int64())
	assert.Equal(t, int64(4), MulDivUp(big.NewInt(5), big.NewInt(2), big.NewInt(3)).Int64())
	// exact division does not round up
	assert.Equal(t, int64(10), MulDivUp(big.NewInt(5), big.NewInt(4), big.NewInt(2)).Int64())
}

func TestWadMulDiv(t *testing.T) {
	half := new(big.Int).Div(Unit, big.NewInt(2))

	// 0.5 * 0.5 = 0.25
	quarter := WadMul(half, half)
	assert.Equal(t, 0, quarter.Cmp(new(big.Int).Div(Unit, big.NewInt(4))))

	// 1 / 0.5 = 2
	two := WadDiv(Unit, half)
	assert.Equal(t, 0, two.Cmp(new(big.Int).Mul(Unit, big.NewInt(2))))

	// 1/3 in wad truncates the repeating tail
	third := WadDiv(Unit, new(big.Int).Mul(big.NewInt(3), Unit))
	assert.Equal(t, "333333333333333333", third.String())
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "1000000000000000000", Unit.String())
}

func TestMinMaxCloneZero(t *testing.T) {
	a, b := big.NewInt(3), big.NewInt(7)
	assert.Equal(t, int64(3), Min(a, b).Int64())
	assert.Equal(t, int64(7), Max(a, b).Int64())
	assert.Equal(t, int64(3), Min(b, a).Int64())
	assert.Equal(t, int64(7), Max(b, a).Int64())

	assert.True(t, IsZero(nil))
	assert.True(t, IsZero(new(big.Int)))
	assert.False(t, IsZero(a))

	c := Clone(a)
	c.Add(c, big.NewInt(1))
	assert.Equal(t, int64(3), a.Int64())
	assert.Equal(t, int64(0), Clone(nil).Int64())
}

func TestLog10Wad(t *testing.T) {
	// log10(1) == 0
	v, err := Log10Wad(FromUint(1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	// log10(10) == 1
	v, err = Log10Wad(FromUint(10))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(Unit))

	// log10(100) == 2
	v, err = Log10Wad(FromUint(100))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(new(big.Int).Mul(Unit, big.NewInt(2))))

	// log10(2) ~= 0.301029995663981195
	v, err = Log10Wad(FromUint(2))
	require.NoError(t, err)
	assert.Equal(t, "301029995663981195", v.String())
}

func TestLog10WadDeterministic(t *testing.T) {
	x := new(big.Int).Add(FromUint(1), big.NewInt(123456789))
	a, err := Log10Wad(x)
	require.NoError(t, err)
	b, err := Log10Wad(x)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))
}
