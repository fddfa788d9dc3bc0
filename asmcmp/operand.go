// Package asmcmp implements the assembler-compare IR: a linear
// doubly-linked instruction stream, labels, virtual/physical registers,
// stashes, inline-assembly fragments and a source map, sitting below the
// optimizer IR and above the final textual assembly.
package asmcmp

import (
	"github.com/decomp/exp/bin"
	"github.com/mewbak/x86/x86asm"
)

// VRegID, LabelID, StashID and InlineAsmID are asmcmp's own dense id
// spaces, separate from the optimizer IR's.
type (
	VRegID      uint32
	LabelID     uint32
	StashID     uint32
	InlineAsmID uint32
	InstrIndex  int64
)

// NoneIndex is the sentinel instruction index ("unbound"/"no such
// instruction").
const NoneIndex InstrIndex = -1

// NoneID is the reserved all-ones sentinel shared by asmcmp's id spaces.
const NoneID = ^uint32(0)

// VRegKind classifies a virtual register's eventual concrete register
// class.
type VRegKind int

const (
	VRegGeneralPurpose VRegKind = iota
	VRegFloatingPoint
	VRegDirectSpillSlot
	VRegIndirectSpillSlot
	VRegStackFramePointer
	VRegImmediate
	VRegExternalMemory
)

// WidthVariant is a virtual register's read/write width.
type WidthVariant int

const (
	WidthDefault WidthVariant = iota
	Width8
	Width16
	Width32
	Width64
	Width80
	Width128
	WidthSingleFP
	WidthDoubleFP
)

// RelocationKind maps a symbol reference to its GAS/Intel syntactic
// form.
type RelocationKind int

const (
	RelocAbsolute RelocationKind = iota
	RelocPLT
	RelocGOTPCREL
	RelocTPOFF
	RelocGOTTPOFF
	RelocTLSGD
)

// String renders the relocation suffix, e.g. "@PLT".
func (r RelocationKind) String() string {
	switch r {
	case RelocPLT:
		return "@PLT"
	case RelocGOTPCREL:
		return "@GOTPCREL"
	case RelocTPOFF:
		return "@TPOFF"
	case RelocGOTTPOFF:
		return "@GOTTPOFF"
	case RelocTLSGD:
		return "@TLSGD"
	default:
		return ""
	}
}

// IndirectBasis tags the base of an indirect addressing-mode operand.
type IndirectBasis int

const (
	BasisPhysical IndirectBasis = iota
	BasisVirtual
	BasisInternalLabel
	BasisExternalLabel
	BasisLocalVar
	BasisSpillArea
	BasisTemporaryArea
	BasisVarargSaveArea
)

// Indirect is the `indirect{basis, offset, width variant}` operand
// payload.
type Indirect struct {
	Basis    IndirectBasis
	Phys     x86asm.Reg
	Virt     VRegID
	Label    LabelID
	External string
	Reloc    RelocationKind
	SpillIdx int
	Offset   bin.Address
	Width    WidthVariant
	// Widen32To64OnSpillWrite widens a 32-bit write targeting a spill
	// slot to a full 64-bit store, matching how the slot was reserved.
	Widen32To64OnSpillWrite bool
}

// RIPRelative is the RIP-relative indirect operand payload: either an
// internal label or an external symbol plus a relocation kind.
type RIPRelative struct {
	Label    LabelID // NoneID when referring to an external symbol
	External string
	Reloc    RelocationKind
	Offset   bin.Address
}

// OperandKind tags the variant carried by a Value.
type OperandKind int

const (
	OperandImmInt OperandKind = iota
	OperandImmUInt
	OperandPhysReg
	OperandVirtReg
	OperandIndirect
	OperandRIPRelative
	OperandExternalLabel
	OperandInternalLabel
	OperandX87Reg
	OperandStashIndex
	OperandInlineAsmIndex
)

// SegmentOverride is the optional segment-register prefix on a memory
// operand.
type SegmentOverride int

const (
	SegmentNone SegmentOverride = iota
	SegmentFS
	SegmentGS
)

// Value is the tagged union over every asmcmp operand value shape:
// immediates, physical and virtual registers, indirect and RIP-relative
// memory references, labels, x87 stack slots, stash and inline-asm
// fragment indices.
type Value struct {
	Kind OperandKind

	Int  int64
	UInt uint64

	Phys x86asm.Reg

	Virt  VRegID
	Width WidthVariant

	Indirect Indirect

	RIP RIPRelative

	ExternalLabel string
	ExternalReloc RelocationKind
	ExternalOffset bin.Address

	InternalLabel LabelID

	X87Index int

	Stash     StashID
	InlineAsm InlineAsmID

	Segment SegmentOverride
}

// ImmInt builds an integer-immediate operand.
func ImmInt(v int64) Value { return Value{Kind: OperandImmInt, Int: v} }

// ImmUInt builds an unsigned-immediate operand.
func ImmUInt(v uint64) Value { return Value{Kind: OperandImmUInt, UInt: v} }

// PhysReg builds a physical-register operand.
func PhysReg(reg x86asm.Reg) Value { return Value{Kind: OperandPhysReg, Phys: reg} }

// VirtReg builds a virtual-register operand with the given width.
func VirtReg(id VRegID, width WidthVariant) Value {
	return Value{Kind: OperandVirtReg, Virt: id, Width: width}
}
