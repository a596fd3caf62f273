// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/gysr-io/core-go/fixed"
)

// DefaultGysrWeight is the default spend-bonus weight constant (0.01). It is
// economic policy, not a structural constant, so pools may override it via
// configuration.
var DefaultGysrWeight = new(big.Int).Div(fixed.Unit, big.NewInt(100))

// SpendBonus computes the spend-to-boost multiplier, wad-scaled:
//
//	1 + log10(1 + (spent/weight) / (usage + weight))
//
// spent is the GYSR amount spent, usage the pool's current usage ratio in
// [0,1), and weight the tunable weight constant. Spending more, or spending
// into a less-boosted pool, yields a higher multiplier, with diminishing
// returns from the logarithm. Zero spend returns exactly 1.
func SpendBonus(spent, usage, weight *big.Int) (*big.Int, error) {
	if fixed.IsZero(spent) {
		return fixed.Clone(fixed.Unit), nil
	}
	x := fixed.WadDiv(spent, weight)
	denom := new(big.Int).Add(usage, weight)
	y := fixed.WadDiv(x, denom)
	lg, err := fixed.Log10Wad(new(big.Int).Add(fixed.Unit, y))
	if err != nil {
		return nil, errors.Wrap(err, "spend bonus")
	}
	return lg.Add(lg, fixed.Unit), nil
}

// usageRatio measures how much of the pool's registered weight comes from
// boosting: (weight - rawShares) / weight, wad-scaled, 0 for an empty pool.
func usageRatio(totalWeight, totalRaw *big.Int) *big.Int {
	if totalWeight.Sign() == 0 {
		return new(big.Int)
	}
	boosted := new(big.Int).Sub(totalWeight, totalRaw)
	if boosted.Sign() <= 0 {
		return new(big.Int)
	}
	return fixed.WadDiv(boosted, totalWeight)
}
