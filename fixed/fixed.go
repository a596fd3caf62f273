// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"
)

// Quantities across the accounting core are integers scaled by 10^18 ("wad"),
// or by the token's native decimals where explicitly stated. There is no
// floating point anywhere below this package.

// Decimals is the scale of wad quantities.
const Decimals = 18

var (
	// Unit is 10^18, the wad scale factor.
	Unit = ethmath.BigPow(10, Decimals)

	zero = new(big.Int)
)

// MulDiv computes a*b/c without intermediate overflow, truncating toward zero.
// Truncation is the default rounding everywhere: share mints and token outflows
// always round against the caller so the ledger can never over-issue.
// Panics on division by zero, as big.Int does.
func MulDiv(a, b, c *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, c)
}

// MulDivUp computes a*b/c rounding away from zero. Used only where an operation
// explicitly states round-up semantics (e.g. the shares backing a requested
// token amount).
func MulDivUp(a, b, c *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(p, c, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// WadMul computes a*b/1e18, truncating.
func WadMul(a, b *big.Int) *big.Int {
	return MulDiv(a, b, Unit)
}

// WadDiv computes a*1e18/b, truncating.
func WadDiv(a, b *big.Int) *big.Int {
	return MulDiv(a, Unit, b)
}

// FromUint converts an unscaled integer to wad.
func FromUint(v uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(v), Unit)
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) > 0 {
		return a
	}
	return b
}

// IsZero reports whether v is nil or zero.
func IsZero(v *big.Int) bool {
	return v == nil || v.Sign() == 0
}

// Clone returns a defensive copy, mapping nil to zero.
func Clone(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Zero returns a shared immutable zero value for comparisons.
func Zero() *big.Int {
	return zero
}
