package analysis

import "github.com/kefir-lang/kefirgo/ir"

// CodeLiveness stores, per block, the set of instructions alive at
// block entry/exit, computed by a backward dataflow fixpoint.
type CodeLiveness struct {
	code      *ir.CodeContainer
	structure *CodeStructure

	aliveIn  map[ir.BlockID]map[ir.InstrID]bool
	aliveOut map[ir.BlockID]map[ir.InstrID]bool

	used map[ir.InstrID]bool
}

// usesInBlock returns every instruction referenced as an input by any
// instruction inside block, regardless of where the referenced
// instruction is itself defined.
func usesInBlock(code *ir.CodeContainer, block ir.BlockID) map[ir.InstrID]bool {
	b, _ := code.Block(block)
	out := make(map[ir.InstrID]bool)
	for _, iid := range b.Instructions(code) {
		instr, _ := code.Instr(iid)
		for _, in := range instrInputs(instr) {
			out[in] = true
		}
	}
	return out
}

// instrInputs re-derives an instruction's inputs from its exported
// Operand fields (Instruction.inputs is unexported to the ir package).
func instrInputs(instr *ir.Instruction) []ir.InstrID {
	var out []ir.InstrID
	push := func(id ir.InstrID) {
		if id != ir.InstrID(ir.NoneID) {
			out = append(out, id)
		}
	}
	switch instr.Op {
	case ir.OpLoad, ir.OpStore:
		push(instr.Operand.Memory.Location)
		push(instr.Operand.Memory.Value)
	case ir.OpBitfieldGet, ir.OpBitfieldSet:
		push(instr.Operand.Bitfield.Base)
		push(instr.Operand.Bitfield.Value)
	case ir.OpJump, ir.OpBranch:
		push(instr.Operand.Branch.Condition)
	case ir.OpAllocLocal:
		push(instr.Operand.StackAlloc.Size)
		push(instr.Operand.StackAlloc.Align)
	case ir.OpCall, ir.OpTailCall:
		push(instr.Operand.Call.Indirect)
	case ir.OpAtomicLoad, ir.OpAtomicStore, ir.OpAtomicRMW:
		for _, r := range instr.Operand.Atomic.Refs {
			push(r)
		}
	default:
		for i := 0; i < instr.Operand.NumRefs; i++ {
			push(instr.Operand.Refs[i])
		}
	}
	return out
}

func defsInBlock(code *ir.CodeContainer, block ir.BlockID) map[ir.InstrID]bool {
	b, _ := code.Block(block)
	out := make(map[ir.InstrID]bool)
	for _, iid := range b.Instructions(code) {
		out[iid] = true
	}
	return out
}

// BuildLiveness runs a reverse-postorder fixpoint: alive_out = union of
// successors' alive_in plus, for each successor, the phi-link value
// this block supplies; alive_in = (alive_out ∪ uses_in_block) \
// defs_in_block.
func BuildLiveness(code *ir.CodeContainer, structure *CodeStructure) *CodeLiveness {
	l := &CodeLiveness{
		code:      code,
		structure: structure,
		aliveIn:   make(map[ir.BlockID]map[ir.InstrID]bool),
		aliveOut:  make(map[ir.BlockID]map[ir.InstrID]bool),
		used:      make(map[ir.InstrID]bool),
	}

	blocks := structure.ReversePostorder()
	uses := make(map[ir.BlockID]map[ir.InstrID]bool, len(blocks))
	defs := make(map[ir.BlockID]map[ir.InstrID]bool, len(blocks))
	for _, b := range blocks {
		uses[b] = usesInBlock(code, b)
		defs[b] = defsInBlock(code, b)
		l.aliveIn[b] = make(map[ir.InstrID]bool)
		l.aliveOut[b] = make(map[ir.InstrID]bool)
	}

	changed := true
	for changed {
		changed = false
		for _, b := range blocks {
			out := make(map[ir.InstrID]bool)
			for _, succ := range structure.Successors(b) {
				for id := range l.aliveIn[succ] {
					out[id] = true
				}
				bSucc, ok := code.Block(succ)
				if !ok {
					continue
				}
				for _, phiID := range bSucc.Phis() {
					phi, _ := code.Phi(phiID)
					if incoming, ok := phi.Link(b); ok {
						out[incoming] = true
					}
				}
			}
			in := make(map[ir.InstrID]bool)
			for id := range out {
				in[id] = true
			}
			for id := range uses[b] {
				in[id] = true
			}
			for id := range defs[b] {
				delete(in, id)
			}

			if !setsEqual(l.aliveOut[b], out) {
				l.aliveOut[b] = out
				changed = true
			}
			if !setsEqual(l.aliveIn[b], in) {
				l.aliveIn[b] = in
				changed = true
			}
		}
	}

	for _, b := range blocks {
		for id := range l.aliveIn[b] {
			l.used[id] = true
		}
		for id := range l.aliveOut[b] {
			l.used[id] = true
		}
		for id := range uses[b] {
			l.used[id] = true
		}
	}

	return l
}

func setsEqual(a, b map[ir.InstrID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}

// AliveIn returns the set of instructions alive at block's entry.
func (l *CodeLiveness) AliveIn(block ir.BlockID) map[ir.InstrID]bool {
	return copySet(l.aliveIn[block])
}

// AliveOut returns the set of instructions alive at block's exit.
func (l *CodeLiveness) AliveOut(block ir.BlockID) map[ir.InstrID]bool {
	return copySet(l.aliveOut[block])
}

func copySet(s map[ir.InstrID]bool) map[ir.InstrID]bool {
	out := make(map[ir.InstrID]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// InstructionIsAlive reports whether instr must be kept: false iff the
// instruction is both side-effect-free and has an empty use set.
func (l *CodeLiveness) InstructionIsAlive(instr ir.InstrID) bool {
	in, ok := l.code.Instr(instr)
	if !ok {
		return false
	}
	if !in.ControlSideEffectFree {
		return true
	}
	return l.used[instr]
}
