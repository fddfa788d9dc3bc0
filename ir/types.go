// Package ir implements the optimizer IR container: blocks,
// instructions, phis, calls, inline-assembly nodes and per-function
// debug info, all owned by a per-function CodeContainer and referenced
// everywhere else by dense integer ids rather than pointers, so the IR
// can hold cyclic and pointer-graph-shaped structures without cycles in
// the Go object graph itself.
package ir

import (
	"fmt"

	llirconstant "github.com/llir/llvm/ir/constant"
	llirtypes "github.com/llir/llvm/ir/types"

	"github.com/kefir-lang/kefirgo/container"
)

// NoneID is the reserved all-ones sentinel shared by every id space in
// the core.
const NoneID = ^uint32(0)

// BlockID, InstrID, PhiID, CallID and InlineAsmID are the five dense,
// per-function id spaces of a CodeContainer. Each is stable for the
// container's lifetime and never reused after removal.
type (
	BlockID     uint32
	InstrID     uint32
	PhiID       uint32
	CallID      uint32
	InlineAsmID uint32
	FunctionID  uint32
	TypeID      uint32
)

// Opcode identifies the operation an Instruction performs, and therefore
// which field of Operand is populated.
type Opcode int

const (
	OpIntConst Opcode = iota
	OpUIntConst
	OpFloat32Const
	OpFloat64Const
	OpGetArgument
	OpLoad
	OpStore
	OpAllocLocal
	OpAdd
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpNeg
	OpNot
	OpIntCompare
	OpJump
	OpBranch
	OpReturn
	OpUnreachable
	OpTailCall
	OpIJump
	OpCall
	OpPhi
	OpFence
	OpAtomicLoad
	OpAtomicStore
	OpAtomicRMW
	OpBitfieldGet
	OpBitfieldSet
	OpInlineAsm
	OpGetGlobal
	OpSetGlobal
)

var opcodeNames = [...]string{
	OpIntConst:     "int_const",
	OpUIntConst:    "uint_const",
	OpFloat32Const: "float32_const",
	OpFloat64Const: "float64_const",
	OpGetArgument:  "get_argument",
	OpLoad:         "load",
	OpStore:        "store",
	OpAllocLocal:   "alloc_local",
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpShl:          "shl",
	OpShr:          "shr",
	OpNeg:          "neg",
	OpNot:          "not",
	OpIntCompare:   "int_compare",
	OpJump:         "jump",
	OpBranch:       "branch",
	OpReturn:       "return",
	OpUnreachable:  "unreachable",
	OpTailCall:     "tail_call",
	OpIJump:        "ijump",
	OpCall:         "call",
	OpPhi:          "phi",
	OpFence:        "fence",
	OpAtomicLoad:   "atomic_load",
	OpAtomicStore:  "atomic_store",
	OpAtomicRMW:    "atomic_rmw",
	OpBitfieldGet:  "bitfield_get",
	OpBitfieldSet:  "bitfield_set",
	OpInlineAsm:    "inline_asm",
	OpGetGlobal:    "get_global",
	OpSetGlobal:    "set_global",
}

// String renders the opcode's canonical mnemonic, used by text dumps.
func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return fmt.Sprintf("opcode(%d)", int(op))
	}
	return opcodeNames[op]
}

// operandFamily classifies which Operand sub-struct an opcode populates.
type operandFamily int

const (
	familyRefs operandFamily = iota
	familyType
	familyMemory
	familyBitfield
	familyBranch
	familyStackAlloc
	familyFunctionCall
	familyAtomic
	familyVariable
	familyPhi
	familyInlineAsm
	familyImm
	familyNone
)

var opcodeFamily = map[Opcode]operandFamily{
	OpIntConst:     familyImm,
	OpUIntConst:    familyImm,
	OpFloat32Const: familyImm,
	OpFloat64Const: familyImm,
	OpGetArgument:  familyImm,
	OpLoad:         familyMemory,
	OpStore:        familyMemory,
	OpAllocLocal:   familyStackAlloc,
	OpAdd:          familyRefs,
	OpSub:          familyRefs,
	OpMul:          familyRefs,
	OpAnd:          familyRefs,
	OpOr:           familyRefs,
	OpXor:          familyRefs,
	OpShl:          familyRefs,
	OpShr:          familyRefs,
	OpNeg:          familyRefs,
	OpNot:          familyRefs,
	OpIntCompare:   familyRefs,
	OpJump:         familyBranch,
	OpBranch:       familyBranch,
	OpReturn:       familyRefs,
	OpUnreachable:  familyNone,
	OpTailCall:     familyFunctionCall,
	OpIJump:        familyRefs,
	OpCall:         familyFunctionCall,
	OpPhi:          familyPhi,
	OpFence:        familyNone,
	OpAtomicLoad:   familyAtomic,
	OpAtomicStore:  familyAtomic,
	OpAtomicRMW:    familyAtomic,
	OpBitfieldGet:  familyBitfield,
	OpBitfieldSet:  familyBitfield,
	OpInlineAsm:    familyInlineAsm,
	OpGetGlobal:    familyVariable,
	OpSetGlobal:    familyVariable,
}

// isControlFlow classifies an opcode (an instruction's
// ControlSideEffectFree flag is its negation): terminators,
// memory side-effecting ops, calls, get_argument, volatile loads,
// fences and inline-asm with side effects are control-flow instructions
// (appended to the block's separate control-flow sibling list in
// addition to the ordinary instruction list).
func isControlFlow(op Opcode, volatile bool) bool {
	switch op {
	case OpJump, OpBranch, OpReturn, OpUnreachable, OpTailCall, OpIJump, OpCall,
		OpStore, OpGetArgument, OpFence, OpAtomicLoad, OpAtomicStore, OpAtomicRMW,
		OpInlineAsm, OpSetGlobal:
		return true
	case OpLoad:
		return volatile
	default:
		return false
	}
}

func isTerminator(op Opcode) bool {
	switch op {
	case OpJump, OpBranch, OpReturn, OpUnreachable, OpTailCall, OpIJump, OpInlineAsm:
		return true
	default:
		return false
	}
}

// TypeRef names a type in the module's dense type table together with an
// auxiliary index (used e.g. to pick a struct field or array element
// type for aggregate accesses).
type TypeRef struct {
	Type  TypeID
	Index int
}

// MemoryAccess is the operand payload for OpLoad/OpStore.
type MemoryAccess struct {
	Location InstrID
	Value    InstrID // NoneID for loads
	Volatile bool
}

// BitfieldAccess is the operand payload for OpBitfieldGet/OpBitfieldSet.
type BitfieldAccess struct {
	Base   InstrID
	Value  InstrID // NoneID for a get
	Offset uint32
	Length uint32
}

// BranchOperand is the operand payload for OpJump/OpBranch.
type BranchOperand struct {
	Target        BlockID
	Alt           BlockID // NoneID for an unconditional jump
	Condition     InstrID // NoneID for an unconditional jump
	ConditionKind int
	Comparison    int
}

// StackAllocation is the operand payload for OpAllocLocal.
type StackAllocation struct {
	Size        InstrID
	Align       InstrID
	WithinScope bool
}

// FunctionCallOperand is the operand payload for OpCall/OpTailCall.
type FunctionCallOperand struct {
	Call     CallID
	Indirect InstrID // NoneID for a direct call
}

// AtomicOperand is the operand payload for atomic opcodes.
type AtomicOperand struct {
	Refs         [3]InstrID
	MemoryOrder  int
}

// VariableOperand is the operand payload for OpGetGlobal/OpSetGlobal.
type VariableOperand struct {
	Global container.StringID
	Offset int64
}

// ImmKind tags which field of Imm is populated.
type ImmKind int

const (
	ImmInt ImmKind = iota
	ImmUInt
	ImmFloat32
	ImmFloat64
	ImmLongDouble
	ImmStringRef
	ImmBlockRef
)

// Imm is the operand payload for constant-producing opcodes. Integer and
// floating-point payloads reuse llir/llvm's constant representation
// rather than re-inventing arbitrary-width scalar storage.
type Imm struct {
	Kind       ImmKind
	Int        *llirconstant.Int
	Float      *llirconstant.Float
	StringRef  container.StringID
	BlockRef   BlockID
	ArgIndex   int // populated for OpGetArgument
}

// Operand is the fixed small union carried by every instruction. Only
// the field matching the owning instruction's opcode family is
// meaningful; the rest are zero.
type Operand struct {
	Refs    [3]InstrID
	NumRefs int

	Type TypeRef

	Memory MemoryAccess

	Bitfield BitfieldAccess

	Branch BranchOperand

	StackAlloc StackAllocation

	Call FunctionCallOperand

	Atomic AtomicOperand

	Variable VariableOperand

	Phi PhiID

	InlineAsm InlineAsmID

	Imm Imm
}

// moduleTypeTable stores the module's type set, backed by llir/llvm's
// type system rather than a hand-rolled type representation.
type moduleTypeTable struct {
	types []llirtypes.Type
}

func (t *moduleTypeTable) add(typ llirtypes.Type) TypeID {
	id := TypeID(len(t.types))
	t.types = append(t.types, typ)
	return id
}

func (t *moduleTypeTable) get(id TypeID) (llirtypes.Type, bool) {
	if int(id) < 0 || int(id) >= len(t.types) {
		return nil, false
	}
	return t.types[id], true
}
