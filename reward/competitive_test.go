// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

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
)

func newCompetitive(t *testing.T, cfg CompetitiveConfig, supply int64) (*Competitive, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	vault := gysr.MustParseAddress("0x0000000000000000000000000000000000000301")
	m, err := NewCompetitive(clock, rewardToken, newRewardLedger(vault, supply), cfg)
	require.NoError(t, err)
	return m, clock
}

func wad(n int64, d int64) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(fixed.Unit, big.NewInt(n)), big.NewInt(d))
}

func TestCompetitiveConfigValidation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1_000_000, 0))
	vault := gysr.MustParseAddress("0x0000000000000000000000000000000000000302")

	_, err := NewCompetitive(clock, rewardToken, newRewardLedger(vault, 0), CompetitiveConfig{})
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))

	_, err = NewCompetitive(clock, rewardToken, newRewardLedger(vault, 0), CompetitiveConfig{
		BonusMin: fixed.Unit, BonusMax: wad(1, 2),
	})
	assert.True(t, reverts.IsKind(err, reverts.KindInvalidInput))
}

func TestCompetitiveTimeBonusRamp(t *testing.T) {
	m, _ := newCompetitive(t, CompetitiveConfig{
		BonusMin: wad(1, 2), BonusMax: fixed.Unit, BonusPeriod: 100,
	}, 0)

	assert.Equal(t, wad(1, 2), m.timeBonus(0))
	assert.Equal(t, wad(3, 4), m.timeBonus(50))
	assert.Equal(t, fixed.Unit, m.timeBonus(100))
	assert.Equal(t, fixed.Unit, m.timeBonus(1000))
}

func TestCompetitiveTimeBonusCappedAtOne(t *testing.T) {
	m, _ := newCompetitive(t, CompetitiveConfig{
		BonusMin: wad(1, 2), BonusMax: wad(2, 1), BonusPeriod: 100,
	}, 0)

	// ramp value 1.25 at half period, payout coefficient capped
	assert.Equal(t, fixed.Unit, m.timeBonus(50))
	assert.Equal(t, fixed.Unit, m.timeBonus(100))
	// below the cap the raw ramp applies: 0.5 + 1.5*20/100
	assert.Equal(t, wad(8, 10), m.timeBonus(20))
}

func TestCompetitiveEarlyExitPenalty(t *testing.T) {
	m, clock := newCompetitive(t, CompetitiveConfig{
		BonusMin: wad(1, 2), BonusMax: fixed.Unit, BonusPeriod: 100,
	}, 1000)
	require.NoError(t, m.Fund(funder, big.NewInt(1000), 0, 100))

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)

	clock.Advance(20 * time.Second)
	r, err := m.Unstake(alice, big.NewInt(100), &PositionData{Index: 0})
	require.NoError(t, err)

	// 200 unlocked, bonus 0.5 + 0.5*20/100 = 0.6
	assert.Equal(t, big.NewInt(120), r.Rewards[rewardToken])
	// the shortfall stays in the vault, it is not redistributed
	assert.Equal(t, int64(0), m.Accumulator().Dust().Int64())
	assert.Equal(t, 1, m.Accumulator().ledger.TotalBalance().Cmp(big.NewInt(800)))
}

func TestCompetitiveFullBonusPayout(t *testing.T) {
	m, clock := newCompetitive(t, CompetitiveConfig{
		BonusMin: wad(1, 2), BonusMax: fixed.Unit, BonusPeriod: 100,
	}, 1000)
	require.NoError(t, m.Fund(funder, big.NewInt(1000), 0, 100))

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)

	clock.Advance(100 * time.Second)
	r, err := m.Unstake(alice, big.NewInt(100), &PositionData{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), r.Rewards[rewardToken])
}

func TestCompetitiveClaimReBaselines(t *testing.T) {
	m, clock := newCompetitive(t, CompetitiveConfig{
		BonusMin: fixed.Unit, BonusMax: fixed.Unit,
	}, 1000)
	require.NoError(t, m.Fund(funder, big.NewInt(1000), 0, 100))

	_, err := m.Stake(alice, big.NewInt(100), nil)
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	r, err := m.Claim(alice, &PositionData{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), r.Rewards[rewardToken])
	assert.Equal(t, 1, m.PositionCount(alice))

	clock.Advance(50 * time.Second)
	r, err = m.Claim(alice, &PositionData{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), r.Rewards[rewardToken])
}
