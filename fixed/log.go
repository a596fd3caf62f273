// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// lnPrecision is the number of decimal digits carried through the series
// expansion. Fixed so results are bit-identical across platforms.
const lnPrecision = 36

var ln10 = mustLn(decimal.NewFromInt(10))

func mustLn(d decimal.Decimal) decimal.Decimal {
	r, err := d.Ln(lnPrecision)
	if err != nil {
		panic(err)
	}
	return r
}

// Log10Wad computes log10(x) of a wad-scaled value, returned wad-scaled and
// truncated toward zero. x must be positive. The computation runs on
// arbitrary-precision decimals at a fixed series precision, never floats, so
// the result is deterministic.
func Log10Wad(x *big.Int) (*big.Int, error) {
	d := decimal.NewFromBigInt(x, -Decimals)
	ln, err := d.Ln(lnPrecision)
	if err != nil {
		return nil, err
	}
	l10 := ln.DivRound(ln10, lnPrecision)
	return l10.Shift(Decimals).Truncate(0).BigInt(), nil
}
