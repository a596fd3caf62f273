// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert. Every mutating operation either completes fully or
// fails with one of these kinds and no state change.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindInsufficientBalance
	KindCapacityExceeded
	KindUnauthorized
	KindStateConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInsufficientBalance:
		return "insufficient balance"
	case KindCapacityExceeded:
		return "capacity exceeded"
	case KindUnauthorized:
		return "unauthorized"
	case KindStateConflict:
		return "state conflict"
	default:
		return "unknown"
	}
}

// ErrRevert is the error type returned by all accounting operations.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func InvalidInput(format string, args ...any) *ErrRevert {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

func InsufficientBalance(format string, args ...any) *ErrRevert {
	return New(KindInsufficientBalance, fmt.Sprintf(format, args...))
}

func CapacityExceeded(format string, args ...any) *ErrRevert {
	return New(KindCapacityExceeded, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) *ErrRevert {
	return New(KindUnauthorized, fmt.Sprintf(format, args...))
}

func StateConflict(format string, args ...any) *ErrRevert {
	return New(KindStateConflict, fmt.Sprintf(format, args...))
}

// IsRevertErr reports whether err is (or wraps) an ErrRevert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsKind reports whether err is (or wraps) an ErrRevert of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return false
	}
	return ve.kind == kind
}
