// Package schedule implements the instruction scheduler: block
// linearization, the stack-based per-instruction scheduling algorithm,
// and the monotonic linear indices and liveness ranges it produces.
package schedule

import (
	"github.com/kefir-lang/kefirgo/analysis"
	"github.com/kefir-lang/kefirgo/errkind"
	"github.com/kefir-lang/kefirgo/ir"
)

// Range is a half-open liveness range [Begin, End) over linear indices.
type Range struct {
	Begin, End int
}

// InstructionSchedule is the scheduler's per-instruction output.
type InstructionSchedule struct {
	LinearIndex int
	Range       Range
}

// BlockSchedule is the scheduler's per-block output: the block's linear
// index among scheduled blocks and its instructions in scheduled order.
type BlockSchedule struct {
	LinearIndex  int
	Instructions []ir.InstrID
}

// BlockScheduler picks the order blocks are scheduled in. The default
// is reverse-postorder from entry_point, then every
// indirect_jump_target_blocks entry in id order.
type BlockScheduler func(code *ir.CodeContainer, structure *analysis.CodeStructure) []ir.BlockID

// DefaultBlockScheduler orders blocks in reverse postorder from the
// entry point, then appends any remaining indirect jump targets.
func DefaultBlockScheduler(code *ir.CodeContainer, structure *analysis.CodeStructure) []ir.BlockID {
	order := structure.ReversePostorder()
	seen := make(map[ir.BlockID]bool, len(order))
	for _, b := range order {
		seen[b] = true
	}
	for _, b := range structure.IndirectJumpTargetBlocks() {
		if !seen[b] {
			order = append(order, b)
			seen[b] = true
		}
	}
	return order
}

// InstructionScheduler extracts, for a pending instruction, the inputs
// that must be scheduled before it. The default delegates to the
// container's own input extraction.
type InstructionScheduler func(code *ir.CodeContainer, instr ir.InstrID) []ir.InstrID

// DefaultInstructionScheduler returns an instruction's inputs in operand
// order, via the container's extractor.
func DefaultInstructionScheduler(code *ir.CodeContainer, instr ir.InstrID) []ir.InstrID {
	return instrInputs(code, instr)
}

// Schedule is the scheduler's final artifact.
type Schedule struct {
	instructions map[ir.InstrID]*InstructionSchedule
	blocks       map[ir.BlockID]*BlockSchedule
	blocksByIdx  map[int]ir.BlockID
}

// NewManual constructs a Schedule directly from precomputed entries,
// for allocator tests and tools that synthesize a schedule without
// running Build over a live CodeContainer.
func NewManual(instructions map[ir.InstrID]*InstructionSchedule) *Schedule {
	return &Schedule{
		instructions: instructions,
		blocks:       make(map[ir.BlockID]*BlockSchedule),
		blocksByIdx:  make(map[int]ir.BlockID),
	}
}

// ScheduleOf returns the per-instruction schedule entry.
func (s *Schedule) ScheduleOf(instr ir.InstrID) (*InstructionSchedule, bool) {
	e, ok := s.instructions[instr]
	return e, ok
}

// LinearIndex returns instr's assigned linear index.
func (s *Schedule) LinearIndex(instr ir.InstrID) (int, bool) {
	e, ok := s.instructions[instr]
	if !ok {
		return 0, false
	}
	return e.LinearIndex, true
}

// LivenessRange returns instr's computed liveness range.
func (s *Schedule) LivenessRange(instr ir.InstrID) (Range, bool) {
	e, ok := s.instructions[instr]
	if !ok {
		return Range{}, false
	}
	return e.Range, true
}

// ScheduleOfBlock returns the per-block schedule entry.
func (s *Schedule) ScheduleOfBlock(block ir.BlockID) (*BlockSchedule, bool) {
	e, ok := s.blocks[block]
	return e, ok
}

// NumOfBlocks returns the number of scheduled blocks.
func (s *Schedule) NumOfBlocks() int {
	return len(s.blocks)
}

// BlockByIndex returns the block assigned linear index i.
func (s *Schedule) BlockByIndex(i int) (ir.BlockID, bool) {
	b, ok := s.blocksByIdx[i]
	return b, ok
}

// entry is one stack slot of the per-block stack-based scheduler.
type entry struct {
	instr   ir.InstrID
	pending bool
}

// Build runs the stack-based linearization algorithm over code, using
// structure and liveness for block order and phi/cross-block liveness
// information.
func Build(code *ir.CodeContainer, structure *analysis.CodeStructure, liveness *analysis.CodeLiveness, blockSched BlockScheduler, instrSched InstructionScheduler) (*Schedule, error) {
	if blockSched == nil {
		blockSched = DefaultBlockScheduler
	}
	if instrSched == nil {
		instrSched = DefaultInstructionScheduler
	}

	s := &Schedule{
		instructions: make(map[ir.InstrID]*InstructionSchedule),
		blocks:       make(map[ir.BlockID]*BlockSchedule),
		blocksByIdx:  make(map[int]ir.BlockID),
	}

	blockOrder := blockSched(code, structure)
	linearIndex := 0

	for blockIdx, bid := range blockOrder {
		b, ok := code.Block(bid)
		if !ok {
			continue
		}

		scheduled := make(map[ir.InstrID]bool)
		var blockInstrs []ir.InstrID

		var roots []ir.InstrID

		// (i) every control-flow instruction head-to-tail.
		roots = append(roots, b.ControlFlowInstructions(code)...)

		// (ii) every phi-link source for each successor block's live-at-
		// entry phi outputs.
		for _, succ := range structure.Successors(bid) {
			bSucc, ok := code.Block(succ)
			if !ok {
				continue
			}
			for _, phiID := range bSucc.Phis() {
				phi, _ := code.Phi(phiID)
				aliveIn := liveness.AliveIn(succ)
				if !aliveIn[phi.Output] {
					continue
				}
				link, ok := phi.Link(bid)
				if !ok {
					return nil, errkind.Wrap(errkind.MissingPhiLink, "phi %d has no link for predecessor block %d", phiID, bid)
				}
				roots = append(roots, link)
			}
		}

		// (iii) every instruction live across the block boundary to each
		// successor.
		aliveOut := liveness.AliveOut(bid)
		for id := range aliveOut {
			if instr, ok := code.Instr(id); ok && instr.Block == bid {
				roots = append(roots, id)
			}
		}

		// get_argument instructions are always scheduled first, in
		// argument index order.
		var getArgs []ir.InstrID
		var otherRoots []ir.InstrID
		for _, id := range roots {
			instr, ok := code.Instr(id)
			if ok && instr.Op == ir.OpGetArgument {
				getArgs = append(getArgs, id)
			} else {
				otherRoots = append(otherRoots, id)
			}
		}
		sortByArgIndex(code, getArgs)
		roots = append(getArgs, otherRoots...)

		visiting := make(map[ir.InstrID]bool)

		var stack []entry
		pushRoot := func(id ir.InstrID) {
			if id == ir.InstrID(ir.NoneID) || scheduled[id] {
				return
			}
			stack = append(stack, entry{instr: id, pending: true})
		}
		for _, r := range roots {
			pushRoot(r)
		}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			id := top.instr
			if scheduled[id] {
				stack = stack[:len(stack)-1]
				continue
			}
			instr, ok := code.Instr(id)
			if !ok || instr.Block != bid {
				stack = stack[:len(stack)-1]
				continue
			}

			if top.pending {
				if visiting[id] {
					return nil, errkind.Wrap(errkind.CyclicDependency, "cyclic dependency scheduling instruction %d", id)
				}
				visiting[id] = true
				top.pending = false
				inputs := instrSched(code, id)
				for i := len(inputs) - 1; i >= 0; i-- {
					in := inputs[i]
					inInstr, ok := code.Instr(in)
					if !ok || inInstr.Block != bid || scheduled[in] {
						continue
					}
					stack = append(stack, entry{instr: in, pending: true})
				}
				continue
			}

			visiting[id] = false
			scheduled[id] = true
			blockInstrs = append(blockInstrs, id)

			sched := &InstructionSchedule{LinearIndex: linearIndex, Range: Range{Begin: linearIndex, End: linearIndex + 1}}
			s.instructions[id] = sched
			uses := instrSched(code, id)
			if instr.Op == ir.OpPhi {
				// A phi reads each link source, so every source stays
				// live up to the phi's own linear index.
				if phi, ok := code.Phi(instr.Operand.Phi); ok {
					for _, link := range phi.Links() {
						uses = append(uses, link)
					}
				}
			}
			for _, in := range uses {
				if inSched, ok := s.instructions[in]; ok {
					if linearIndex < inSched.Range.Begin {
						inSched.Range.Begin = linearIndex
					}
					if linearIndex+1 > inSched.Range.End {
						inSched.Range.End = linearIndex + 1
					}
				}
			}
			linearIndex++
			stack = stack[:len(stack)-1]
		}

		s.blocks[bid] = &BlockSchedule{LinearIndex: blockIdx, Instructions: blockInstrs}
		s.blocksByIdx[blockIdx] = bid
	}

	return s, nil
}

func sortByArgIndex(code *ir.CodeContainer, ids []ir.InstrID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0; j-- {
			a, _ := code.Instr(ids[j-1])
			b, _ := code.Instr(ids[j])
			if a.Operand.Imm.ArgIndex <= b.Operand.Imm.ArgIndex {
				break
			}
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// instrInputs re-derives an instruction's scheduling inputs from its
// exported Operand fields, reading only the operand field its opcode
// populates, as the container's own extraction does.
func instrInputs(code *ir.CodeContainer, id ir.InstrID) []ir.InstrID {
	instr, ok := code.Instr(id)
	if !ok {
		return nil
	}
	var out []ir.InstrID
	push := func(r ir.InstrID) {
		if r != ir.InstrID(ir.NoneID) {
			out = append(out, r)
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
