package ir

// Instruction is a single optimizer-IR instruction. It is owned by the
// CodeContainer that allocated its id and never moves between
// containers; everything that refers to it does so by InstrID.
type Instruction struct {
	ID    InstrID
	Block BlockID
	Op    Opcode

	Operand Operand

	// ControlSideEffectFree records the per-opcode classification from
	// append_instr; it is independent of whether the instruction is on
	// the control-flow sibling list.
	ControlSideEffectFree bool

	onControlList bool

	// sibling links, instruction list (all non-control instructions plus
	// control ones, in textual/program order)
	prev, next InstrID

	// sibling links, control-flow-only sublist
	ctrlPrev, ctrlNext InstrID
}

func newInstruction(id InstrID, block BlockID, op Opcode, operand Operand, volatile bool) *Instruction {
	return &Instruction{
		ID:                    id,
		Block:                 block,
		Op:                    op,
		Operand:               operand,
		ControlSideEffectFree: !isControlFlow(op, volatile),
		prev:                  InstrID(NoneID),
		next:                  InstrID(NoneID),
		ctrlPrev:              InstrID(NoneID),
		ctrlNext:              InstrID(NoneID),
	}
}

// inputs returns every InstrID this instruction's operand reads, per its
// opcode family. Used by Trace and the use-def verifier.
func (instr *Instruction) inputs() []InstrID {
	var out []InstrID
	push := func(id InstrID) {
		if id != InstrID(NoneID) {
			out = append(out, id)
		}
	}
	switch opcodeFamily[instr.Op] {
	case familyRefs:
		for i := 0; i < instr.Operand.NumRefs; i++ {
			push(instr.Operand.Refs[i])
		}
	case familyMemory:
		push(instr.Operand.Memory.Location)
		push(instr.Operand.Memory.Value)
	case familyBitfield:
		push(instr.Operand.Bitfield.Base)
		push(instr.Operand.Bitfield.Value)
	case familyBranch:
		push(instr.Operand.Branch.Condition)
	case familyStackAlloc:
		push(instr.Operand.StackAlloc.Size)
		push(instr.Operand.StackAlloc.Align)
	case familyFunctionCall:
		push(instr.Operand.Call.Indirect)
	case familyAtomic:
		for _, r := range instr.Operand.Atomic.Refs {
			push(r)
		}
	}
	return out
}
