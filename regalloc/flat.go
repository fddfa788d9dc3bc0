// Package regalloc implements the two-level virtual-register allocator:
// a flat fixed-pool-plus-storage allocator, and a linear-scan allocator
// driven by a conflict graph over scheduled IR.
package regalloc

import "github.com/kefir-lang/kefirgo/errkind"

// ID names either a physical register (0..R-1) or a spill slot (R..) in
// a single flat id space.
type ID int

// Filter selects which register indices allocate_register may return.
type Filter func(index int) bool

// AcceptAny is the trivial Filter used when no register is excluded.
func AcceptAny(int) bool { return true }

// VRegAllocator is the flat allocator: a fixed register pool backed by
// a bitmap, plus an unbounded storage (spill) pool grown by doubling.
type VRegAllocator struct {
	registerCount int
	registers     []bool // true = allocated

	storage []bool // true = allocated
}

// NewVRegAllocator creates an allocator over a fixed pool of
// registerCount physical registers.
func NewVRegAllocator(registerCount int) *VRegAllocator {
	return &VRegAllocator{
		registerCount: registerCount,
		registers:     make([]bool, registerCount),
	}
}

func (a *VRegAllocator) isRegister(id ID) bool {
	return int(id) >= 0 && int(id) < a.registerCount
}

// IsAvailable reports whether id is currently unallocated.
func (a *VRegAllocator) IsAvailable(id ID) bool {
	if a.isRegister(id) {
		return !a.registers[id]
	}
	idx := int(id) - a.registerCount
	if idx < 0 || idx >= len(a.storage) {
		return true
	}
	return !a.storage[idx]
}

// TryAllocate atomically test-and-sets id, returning false if it was
// already allocated.
func (a *VRegAllocator) TryAllocate(id ID) bool {
	if a.isRegister(id) {
		if a.registers[id] {
			return false
		}
		a.registers[id] = true
		return true
	}
	idx := int(id) - a.registerCount
	a.growStorage(idx + 1)
	if a.storage[idx] {
		return false
	}
	a.storage[idx] = true
	return true
}

// growStorage doubles the storage pool's backing slice until it holds
// at least n slots.
func (a *VRegAllocator) growStorage(n int) {
	if len(a.storage) >= n {
		return
	}
	newLen := len(a.storage)
	if newLen == 0 {
		newLen = 16
	}
	for newLen < n {
		newLen *= 2
	}
	grown := make([]bool, newLen)
	copy(grown, a.storage)
	a.storage = grown
}

// AllocateRegister linearly searches for a free register whose index
// passes filter, returning errkind.OutOfSpace if none is free.
func (a *VRegAllocator) AllocateRegister(filter Filter) (ID, error) {
	if filter == nil {
		filter = AcceptAny
	}
	for i := 0; i < a.registerCount; i++ {
		if !a.registers[i] && filter(i) {
			a.registers[i] = true
			return ID(i), nil
		}
	}
	return 0, errkind.OutOfSpace
}

// AllocateStorage allocates the lowest-indexed free spill slot, growing
// the storage pool if needed.
func (a *VRegAllocator) AllocateStorage() ID {
	for i, used := range a.storage {
		if !used {
			a.storage[i] = true
			return ID(a.registerCount + i)
		}
	}
	a.growStorage(len(a.storage) + 1)
	idx := len(a.storage) - 1
	for i := 0; i < idx; i++ {
		if !a.storage[i] {
			a.storage[i] = true
			return ID(a.registerCount + i)
		}
	}
	a.storage[idx] = true
	return ID(a.registerCount + idx)
}

// AllocateAny tries a register first, falling back to storage.
func (a *VRegAllocator) AllocateAny(filter Filter) ID {
	if id, err := a.AllocateRegister(filter); err == nil {
		return id
	}
	return a.AllocateStorage()
}

// Deallocate frees id for reuse.
func (a *VRegAllocator) Deallocate(id ID) {
	if a.isRegister(id) {
		a.registers[id] = false
		return
	}
	idx := int(id) - a.registerCount
	if idx >= 0 && idx < len(a.storage) {
		a.storage[idx] = false
	}
}
