// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package decay

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysr-io/core-go/reverts"
)

const day = uint64(86400)

func TestRemainingLinear(t *testing.T) {
	b := New(100 * day)
	b.Add(0, big.NewInt(1000))

	assert.Equal(t, int64(1000), b.Remaining(0).Int64())
	assert.Equal(t, int64(750), b.Remaining(25*day).Int64())
	assert.Equal(t, int64(500), b.Remaining(50*day).Int64())
	assert.Equal(t, int64(0), b.Remaining(100*day).Int64())
	assert.Equal(t, int64(0), b.Remaining(200*day).Int64())
}

func TestRemainingTruncates(t *testing.T) {
	b := New(3)
	b.Add(0, big.NewInt(10))
	// 10 * 2 / 3 = 6 (floor), rounding against the holder
	assert.Equal(t, int64(6), b.Remaining(1).Int64())
}

func TestSettleIdempotent(t *testing.T) {
	b := New(100)
	b.Add(0, big.NewInt(1000))

	released := b.Settle(40)
	assert.Equal(t, int64(400), released.Int64())
	// immediate second settle releases nothing
	assert.Equal(t, int64(0), b.Settle(40).Int64())
	assert.Equal(t, int64(600), b.Value().Int64())
}

func TestAddRestartsClock(t *testing.T) {
	b := New(100)
	b.Add(0, big.NewInt(1000))

	// halfway through, fold in another 500: 500 released, 1000 locked under
	// a fresh window
	released := b.Add(50, big.NewInt(500))
	assert.Equal(t, int64(500), released.Int64())
	assert.Equal(t, int64(1000), b.Value().Int64())
	assert.Equal(t, int64(1000), b.Remaining(50).Int64())
	assert.Equal(t, int64(500), b.Remaining(100).Int64())
}

func TestRemoveForfeitsLocked(t *testing.T) {
	b := New(100)
	b.Add(0, big.NewInt(1000))

	released, err := b.Remove(50, big.NewInt(200))
	require.NoError(t, err)
	assert.Equal(t, int64(500), released.Int64())
	assert.Equal(t, int64(300), b.Value().Int64())

	_, err = b.Remove(50, big.NewInt(301))
	assert.True(t, reverts.IsKind(err, reverts.KindInsufficientBalance))
	assert.Equal(t, int64(300), b.Value().Int64())
}

func TestZeroPeriodDisablesDecay(t *testing.T) {
	b := New(0)
	released := b.Add(0, big.NewInt(777))
	assert.Equal(t, int64(0), released.Int64())
	assert.Equal(t, int64(0), b.Remaining(0).Int64())
	assert.Equal(t, int64(777), b.Settle(0).Int64())
	assert.Equal(t, int64(0), b.Value().Int64())
}

func TestBeforeStartClamped(t *testing.T) {
	b := New(100)
	b.Add(50, big.NewInt(100))
	assert.Equal(t, int64(100), b.Remaining(10).Int64())
}
