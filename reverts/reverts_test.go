// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.True(t, IsRevertErr(InvalidInput("zero amount")))
	assert.True(t, IsRevertErr(errors.Wrap(CapacityExceeded("market full"), "purchase")))
}

func TestIsKind(t *testing.T) {
	err := Unauthorized("sender is not bond owner")
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.False(t, IsKind(err, KindInvalidInput))
	assert.True(t, IsKind(errors.Wrap(err, "redeem"), KindUnauthorized))
	assert.False(t, IsKind(errors.New("plain"), KindUnauthorized))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid input", KindInvalidInput.String())
	assert.Equal(t, "state conflict", KindStateConflict.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
