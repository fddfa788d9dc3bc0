package asmcmp

import "github.com/kefir-lang/kefirgo/errkind"

// VReg is one entry of the virtual-register table.
type VReg struct {
	ID             VRegID
	Kind           VRegKind
	Width          WidthVariant
	SpillSpaceSize int
	TypeDependent  bool // width/placement resolved later from the IR type it lowers
	Immediate      Value
	MemoryPointer  Value
}

func (c *Context) newVReg(kind VRegKind, width WidthVariant) VRegID {
	id := VRegID(c.nextVReg)
	c.nextVReg++
	c.vregs[id] = &VReg{ID: id, Kind: kind, Width: width}
	return id
}

// VRegNew allocates a plain general-purpose or floating-point virtual
// register.
func (c *Context) VRegNew(kind VRegKind, width WidthVariant) (VRegID, error) {
	if kind != VRegGeneralPurpose && kind != VRegFloatingPoint {
		return VRegID(NoneID), errkind.Wrap(errkind.InvalidParameter, "vreg_new requires a general-purpose or floating-point kind, got %d", kind)
	}
	return c.newVReg(kind, width), nil
}

// VRegNewSpill allocates a spill-slot virtual register, direct or
// indirect depending on indirect.
func (c *Context) VRegNewSpill(indirect bool, width WidthVariant) VRegID {
	kind := VRegDirectSpillSlot
	if indirect {
		kind = VRegIndirectSpillSlot
	}
	return c.newVReg(kind, width)
}

// VRegNewStackFramePointer allocates the register that tracks the
// function's stack frame base.
func (c *Context) VRegNewStackFramePointer() VRegID {
	return c.newVReg(VRegStackFramePointer, Width64)
}

// VRegNewImmediate allocates a virtual register standing in for an
// immediate operand value, so immediate-vs-register choices can be
// deferred to a later lowering pass.
func (c *Context) VRegNewImmediate(value Value) VRegID {
	id := c.newVReg(VRegImmediate, WidthDefault)
	c.vregs[id].Immediate = value
	return id
}

// VRegNewMemoryPointer allocates a virtual register standing in for an
// external-memory reference.
func (c *Context) VRegNewMemoryPointer(value Value) VRegID {
	id := c.newVReg(VRegExternalMemory, Width64)
	c.vregs[id].MemoryPointer = value
	return id
}

// VRegSpecifyTypeDependent marks id's eventual width/placement as
// resolved from the IR type it lowers, rather than fixed at creation.
func (c *Context) VRegSpecifyTypeDependent(id VRegID) error {
	v, ok := c.vregs[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "vreg %d not found", id)
	}
	v.TypeDependent = true
	return nil
}

// VRegSetSpillSpaceSize records how many bytes of spill storage id
// requires once placed.
func (c *Context) VRegSetSpillSpaceSize(id VRegID, size int) error {
	v, ok := c.vregs[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "vreg %d not found", id)
	}
	if v.Kind != VRegDirectSpillSlot && v.Kind != VRegIndirectSpillSlot {
		return errkind.Wrap(errkind.InvalidState, "vreg %d is not a spill slot", id)
	}
	v.SpillSpaceSize = size
	return nil
}

// VReg looks up a virtual register's current state.
func (c *Context) VReg(id VRegID) (*VReg, bool) {
	v, ok := c.vregs[id]
	return v, ok
}
