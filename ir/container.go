package ir

import (
	"github.com/pkg/errors"

	"github.com/kefir-lang/kefirgo/errkind"
)

// CodeContainer owns one function's blocks, instructions, phis, calls
// and inline-assembly nodes, each in its own dense id space.
type CodeContainer struct {
	blocks      map[BlockID]*Block
	nextBlock   uint32
	EntryPoint  BlockID

	instrs    map[InstrID]*Instruction
	nextInstr uint32

	phis    map[PhiID]*Phi
	nextPhi uint32

	calls    map[CallID]*CallNode
	nextCall uint32

	inlineAsms    map[InlineAsmID]*InlineAsmNode
	nextInlineAsm uint32

	// inDropDead true while drop_dead is rewriting the container,
	// relaxing the instruction-in-use check on drop_instr so dead
	// instructions can be removed even while other dead instructions
	// still reference them.
	inDropDead bool
}

// NewCodeContainer creates an empty container with no entry block.
func NewCodeContainer() *CodeContainer {
	return &CodeContainer{
		blocks:     make(map[BlockID]*Block),
		instrs:     make(map[InstrID]*Instruction),
		phis:       make(map[PhiID]*Phi),
		calls:      make(map[CallID]*CallNode),
		inlineAsms: make(map[InlineAsmID]*InlineAsmNode),
		EntryPoint: BlockID(NoneID),
	}
}

// NewBlock allocates a fresh block with no instructions and no
// predecessors other than via phi links elsewhere.
func (c *CodeContainer) NewBlock() BlockID {
	id := BlockID(c.nextBlock)
	c.nextBlock++
	c.blocks[id] = newBlock(id)
	if c.EntryPoint == BlockID(NoneID) {
		c.EntryPoint = id
	}
	return id
}

// Block looks up a block by id.
func (c *CodeContainer) Block(id BlockID) (*Block, bool) {
	b, ok := c.blocks[id]
	return b, ok
}

// Blocks returns every live block id, unordered.
func (c *CodeContainer) Blocks() []BlockID {
	out := make([]BlockID, 0, len(c.blocks))
	for id := range c.blocks {
		out = append(out, id)
	}
	return out
}

// Instr looks up an instruction by id.
func (c *CodeContainer) Instr(id InstrID) (*Instruction, bool) {
	instr, ok := c.instrs[id]
	return instr, ok
}

// Phi looks up a phi by id.
func (c *CodeContainer) Phi(id PhiID) (*Phi, bool) {
	p, ok := c.phis[id]
	return p, ok
}

// Call looks up a call node by id.
func (c *CodeContainer) Call(id CallID) (*CallNode, bool) {
	call, ok := c.calls[id]
	return call, ok
}

// InlineAsm looks up an inline-asm node by id.
func (c *CodeContainer) InlineAsm(id InlineAsmID) (*InlineAsmNode, bool) {
	n, ok := c.inlineAsms[id]
	return n, ok
}

// AppendInstr appends a new instruction with the given opcode and
// operand to block_id's sibling list. If the opcode is classified as
// control flow it is also appended to the block's control-flow sublist,
// and control_side_effect_free is set from the per-opcode
// classification.
func (c *CodeContainer) AppendInstr(block BlockID, op Opcode, operand Operand, volatile bool) (InstrID, error) {
	b, ok := c.blocks[block]
	if !ok {
		return InstrID(NoneID), errkind.Wrap(errkind.NotFound, "block %d not found", block)
	}
	id := InstrID(c.nextInstr)
	c.nextInstr++
	instr := newInstruction(id, block, op, operand, volatile)
	c.instrs[id] = instr
	if op == OpPhi {
		if p, ok := c.phis[operand.Phi]; ok {
			p.Output = id
		}
	}

	if b.tail != InstrID(NoneID) {
		c.instrs[b.tail].next = id
		instr.prev = b.tail
	} else {
		b.head = id
	}
	b.tail = id

	if isControlFlow(op, volatile) {
		instr.onControlList = true
		if b.ctrlTail != InstrID(NoneID) {
			c.instrs[b.ctrlTail].ctrlNext = id
			instr.ctrlPrev = b.ctrlTail
		} else {
			b.ctrlHead = id
		}
		b.ctrlTail = id
	}

	return id, nil
}

// ReplaceInstr swaps the opcode/operand of an existing instruction in
// place, preserving its sibling links (both lists).
func (c *CodeContainer) ReplaceInstr(id InstrID, op Opcode, operand Operand, volatile bool) error {
	instr, ok := c.instrs[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "instruction %d not found", id)
	}
	wasControl := instr.onControlList
	nowControl := isControlFlow(op, volatile)
	if wasControl != nowControl {
		return errkind.Wrap(errkind.InvalidRequest, "replace_instr %d changes control-flow classification", id)
	}
	instr.Op = op
	instr.Operand = operand
	instr.ControlSideEffectFree = !isControlFlow(op, volatile)
	return nil
}

// DropInstr removes an instruction, preserving the sibling links of its
// neighbors on both lists. It fails with instruction-in-use if the
// instruction is still referenced by another instruction, a phi link or
// a call argument, unless called from within DropDead (which removes
// uses first).
func (c *CodeContainer) DropInstr(id InstrID) error {
	instr, ok := c.instrs[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "instruction %d not found", id)
	}
	if !c.inDropDead && c.isInstructionInUse(id) {
		return errkind.Wrap(errkind.InstructionInUse, "instruction %d is still referenced", id)
	}

	b := c.blocks[instr.Block]

	if instr.prev != InstrID(NoneID) {
		c.instrs[instr.prev].next = instr.next
	} else {
		b.head = instr.next
	}
	if instr.next != InstrID(NoneID) {
		c.instrs[instr.next].prev = instr.prev
	} else {
		b.tail = instr.prev
	}

	if instr.onControlList {
		if instr.ctrlPrev != InstrID(NoneID) {
			c.instrs[instr.ctrlPrev].ctrlNext = instr.ctrlNext
		} else {
			b.ctrlHead = instr.ctrlNext
		}
		if instr.ctrlNext != InstrID(NoneID) {
			c.instrs[instr.ctrlNext].ctrlPrev = instr.ctrlPrev
		} else {
			b.ctrlTail = instr.ctrlPrev
		}
	}

	delete(c.instrs, id)
	return nil
}

// isInstructionInUse scans every instruction operand, phi link and call
// argument for a reference to target.
func (c *CodeContainer) isInstructionInUse(target InstrID) bool {
	for _, instr := range c.instrs {
		if instr.ID == target {
			continue
		}
		for _, in := range instr.inputs() {
			if in == target {
				return true
			}
		}
	}
	for _, p := range c.phis {
		for _, in := range p.links {
			if in == target {
				return true
			}
		}
		if p.Output == target {
			return true
		}
	}
	for _, call := range c.calls {
		for _, arg := range call.Arguments {
			if arg == target {
				return true
			}
		}
	}
	for _, asm := range c.inlineAsms {
		for _, param := range asm.Parameters {
			if param.ReadRef == target {
				return true
			}
		}
	}
	return false
}

// NewPhi creates an unattached phi owning its own link map.
func (c *CodeContainer) NewPhi(block BlockID) (PhiID, error) {
	b, ok := c.blocks[block]
	if !ok {
		return PhiID(NoneID), errkind.Wrap(errkind.NotFound, "block %d not found", block)
	}
	id := PhiID(c.nextPhi)
	c.nextPhi++
	c.phis[id] = newPhi(id, block)
	b.phis = append(b.phis, id)
	return id, nil
}

// PhiAttach adds or overwrites a phi's link from predecessor_block.
// isPredecessor reports whether predecessor_block is, at the moment of
// the call, a predecessor of the phi's block; PhiAttach fails with
// inconsistent-phi if it is not.
func (c *CodeContainer) PhiAttach(phi PhiID, predecessor BlockID, instr InstrID, isPredecessor func(block, predecessor BlockID) bool) error {
	p, ok := c.phis[phi]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "phi %d not found", phi)
	}
	if !isPredecessor(p.Block, predecessor) {
		return errkind.Wrap(errkind.InconsistentPhi, "block %d is not a predecessor of phi %d's block %d", predecessor, phi, p.Block)
	}
	p.links[predecessor] = instr
	return nil
}

// NewCall allocates a call node with an argc-length argument vector.
func (c *CodeContainer) NewCall(block BlockID, decl FunctionID, argc int) (CallID, error) {
	b, ok := c.blocks[block]
	if !ok {
		return CallID(NoneID), errkind.Wrap(errkind.NotFound, "block %d not found", block)
	}
	id := CallID(c.nextCall)
	c.nextCall++
	c.calls[id] = newCallNode(id, block, decl, argc)
	b.calls = append(b.calls, id)
	return id, nil
}

// NewInlineAsm allocates an inline-assembly fragment bound to block.
func (c *CodeContainer) NewInlineAsm(block BlockID, template string) (InlineAsmID, error) {
	b, ok := c.blocks[block]
	if !ok {
		return InlineAsmID(NoneID), errkind.Wrap(errkind.NotFound, "block %d not found", block)
	}
	id := InlineAsmID(c.nextInlineAsm)
	c.nextInlineAsm++
	c.inlineAsms[id] = newInlineAsmNode(id, block, template)
	b.inlineAsms = append(b.inlineAsms, id)
	return id, nil
}

// TraceVisitor is called once per (user, used) instruction pair
// discovered by Trace.
type TraceVisitor func(user InstrID, used InstrID)

// Trace performs the canonical pre-order traversal used by the use-def
// verifier: for every block in ascending id order, for every
// instruction in sibling order, for every input instruction_ref it
// reads, visitor is called with (user, used).
func (c *CodeContainer) Trace(visitor TraceVisitor) {
	blocks := c.Blocks()
	sortBlockIDs(blocks)
	for _, bid := range blocks {
		b := c.blocks[bid]
		for _, iid := range b.Instructions(c) {
			instr := c.instrs[iid]
			for _, in := range instr.inputs() {
				visitor(iid, in)
			}
		}
	}
}

func sortBlockIDs(ids []BlockID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// DeadIndex supplies the three predicates drop_dead consults:
// is_block_alive, is_instruction_alive and is_block_predecessor.
type DeadIndex interface {
	IsBlockAlive(BlockID) bool
	IsInstructionAlive(InstrID) bool
	IsBlockPredecessor(block, predecessor BlockID) bool
}

// DropDead consumes a DeadIndex and performs a single pass that drops
// instructions flagged dead, drops blocks flagged dead, and rewrites
// phi link maps to keep only links whose source block is reported
// alive by is_block_predecessor.
func (c *CodeContainer) DropDead(index DeadIndex) error {
	c.inDropDead = true
	defer func() { c.inDropDead = false }()

	for _, p := range c.phis {
		for pred := range p.links {
			if !index.IsBlockPredecessor(p.Block, pred) {
				delete(p.links, pred)
			}
		}
	}

	for _, bid := range c.Blocks() {
		b := c.blocks[bid]
		for _, iid := range b.Instructions(c) {
			if !index.IsInstructionAlive(iid) {
				if err := c.DropInstr(iid); err != nil {
					return errors.Wrapf(err, "drop_dead: dropping instruction %d", iid)
				}
			}
		}
	}

	for _, bid := range c.Blocks() {
		if !index.IsBlockAlive(bid) {
			delete(c.blocks, bid)
		}
	}

	return nil
}
