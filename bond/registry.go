// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bond

import (
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
)

// Registry tracks bond ownership: an owned-entity arena keyed by integer id
// with a per-owner index list. Ids are never reused; a removed bond's slot in
// its owner's list is reassigned to the former last element.
type Registry struct {
	entries map[uint64]*entry
	owned   map[gysr.Address][]uint64
	next    uint64
}

type entry struct {
	owner gysr.Address
	index int // position in the owner's list
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[uint64]*entry),
		owned:   make(map[gysr.Address][]uint64),
	}
}

// Mint assigns a fresh id to the owner.
func (r *Registry) Mint(owner gysr.Address) uint64 {
	r.next++
	id := r.next
	r.entries[id] = &entry{owner: owner, index: len(r.owned[owner])}
	r.owned[owner] = append(r.owned[owner], id)
	return id
}

// Burn removes the id from the registry.
func (r *Registry) Burn(id uint64) error {
	e, ok := r.entries[id]
	if !ok {
		return reverts.InvalidInput("unknown bond id %d", id)
	}
	r.unlink(e.owner, e.index)
	delete(r.entries, id)
	return nil
}

// OwnerOf returns the current owner of the id.
func (r *Registry) OwnerOf(id uint64) (gysr.Address, error) {
	e, ok := r.entries[id]
	if !ok {
		return gysr.Address{}, reverts.InvalidInput("unknown bond id %d", id)
	}
	return e.owner, nil
}

// Owned returns the ids held by the owner, in list order.
func (r *Registry) Owned(owner gysr.Address) []uint64 {
	out := make([]uint64, len(r.owned[owner]))
	copy(out, r.owned[owner])
	return out
}

// Transfer reassigns the id from one owner to another. The sender must be the
// current owner.
func (r *Registry) Transfer(from, to gysr.Address, id uint64) error {
	e, ok := r.entries[id]
	if !ok {
		return reverts.InvalidInput("unknown bond id %d", id)
	}
	if e.owner != from {
		return reverts.Unauthorized("sender does not own bond %d", id)
	}
	r.unlink(from, e.index)
	e.owner = to
	e.index = len(r.owned[to])
	r.owned[to] = append(r.owned[to], id)
	return nil
}

// unlink swap-removes the slot from the owner's list, fixing up the moved
// entry's back-reference.
func (r *Registry) unlink(owner gysr.Address, index int) {
	list := r.owned[owner]
	last := len(list) - 1
	if index != last {
		moved := list[last]
		list[index] = moved
		r.entries[moved].index = index
	}
	list = list[:last]
	if len(list) == 0 {
		delete(r.owned, owner)
		return
	}
	r.owned[owner] = list
}
