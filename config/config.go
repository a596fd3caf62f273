// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config provides the fee and parameter registry consumed by the
// pool orchestrator and bond engine. Entries are looked up fresh on every
// operation; callers must not cache them across calls.
package config

import (
	"math/big"
	"sync"

	"github.com/gysr-io/core-go/gysr"
)

// Well-known registry keys.
const (
	// KeySpendFee routes a fraction of vested GYSR spends to a treasury.
	KeySpendFee = "gysr.spend.fee"
	// KeyBondFee is deducted from bond purchase amounts before pricing.
	KeyBondFee = "bond.purchase.fee"
	// KeyGysrWeight overrides the spend-bonus weight constant.
	KeyGysrWeight = "gysr.bonus.weight"
)

// Entry is one registry record: a fee recipient and a wad-scaled rate or
// parameter value.
type Entry struct {
	Recipient gysr.Address
	Rate      *big.Int
}

// Registry is a read-only key lookup, injected where fees apply. Rates may
// change between two operations on the same position; the rate in effect at
// operation time applies.
type Registry interface {
	Get(key string) (Entry, bool)
}

// MemRegistry is an in-memory Registry, safe for concurrent use.
type MemRegistry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{entries: make(map[string]Entry)}
}

func (r *MemRegistry) Get(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	return Entry{Recipient: e.Recipient, Rate: new(big.Int).Set(e.Rate)}, true
}

// Set installs or replaces an entry. A nil rate stores zero.
func (r *MemRegistry) Set(key string, recipient gysr.Address, rate *big.Int) {
	if rate == nil {
		rate = new(big.Int)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = Entry{Recipient: recipient, Rate: new(big.Int).Set(rate)}
}

var _ Registry = (*MemRegistry)(nil)
