package ir

import "testing"

func constOperand(v int64) Operand {
	return Operand{Imm: Imm{Kind: ImmInt}}
}

func refsOperand(refs ...InstrID) Operand {
	var op Operand
	op.NumRefs = len(refs)
	for i, r := range refs {
		op.Refs[i] = r
	}
	return op
}

func TestAppendInstrSiblingOrder(t *testing.T) {
	c := NewCodeContainer()
	b := c.NewBlock()

	i1, err := c.AppendInstr(b, OpIntConst, constOperand(1), false)
	if err != nil {
		t.Fatalf("append 1: %v", err)
	}
	i2, err := c.AppendInstr(b, OpIntConst, constOperand(2), false)
	if err != nil {
		t.Fatalf("append 2: %v", err)
	}

	block, _ := c.Block(b)
	ids := block.Instructions(c)
	if len(ids) != 2 || ids[0] != i1 || ids[1] != i2 {
		t.Fatalf("sibling order = %v, want [%d %d]", ids, i1, i2)
	}
}

func TestAppendInstrControlFlowSublist(t *testing.T) {
	c := NewCodeContainer()
	b := c.NewBlock()

	v1, _ := c.AppendInstr(b, OpIntConst, constOperand(1), false)
	ret, err := c.AppendInstr(b, OpReturn, refsOperand(v1), false)
	if err != nil {
		t.Fatalf("append return: %v", err)
	}

	block, _ := c.Block(b)
	ctrl := block.ControlFlowInstructions(c)
	if len(ctrl) != 1 || ctrl[0] != ret {
		t.Fatalf("control list = %v, want [%d]", ctrl, ret)
	}
	term, ok := block.Terminator(c)
	if !ok || term != ret {
		t.Fatalf("terminator = (%d, %v), want (%d, true)", term, ok, ret)
	}

	instr, _ := c.Instr(v1)
	if instr.onControlList {
		t.Fatalf("int_const should not be on the control-flow sublist")
	}
}

func TestDropInstrInUseFails(t *testing.T) {
	c := NewCodeContainer()
	b := c.NewBlock()
	v1, _ := c.AppendInstr(b, OpIntConst, constOperand(1), false)
	c.AppendInstr(b, OpReturn, refsOperand(v1), false)

	if err := c.DropInstr(v1); err == nil {
		t.Fatalf("expected drop_instr on a still-used instruction to fail")
	}
}

func TestDropInstrPreservesSiblingLinks(t *testing.T) {
	c := NewCodeContainer()
	b := c.NewBlock()
	i1, _ := c.AppendInstr(b, OpIntConst, constOperand(1), false)
	i2, _ := c.AppendInstr(b, OpIntConst, constOperand(2), false)
	i3, _ := c.AppendInstr(b, OpIntConst, constOperand(3), false)

	if err := c.DropInstr(i2); err != nil {
		t.Fatalf("drop_instr: %v", err)
	}

	block, _ := c.Block(b)
	ids := block.Instructions(c)
	if len(ids) != 2 || ids[0] != i1 || ids[1] != i3 {
		t.Fatalf("sibling order after drop = %v, want [%d %d]", ids, i1, i3)
	}
}

func TestPhiAttachInconsistentPhi(t *testing.T) {
	c := NewCodeContainer()
	b0 := c.NewBlock()
	b1 := c.NewBlock()
	phi, err := c.NewPhi(b1)
	if err != nil {
		t.Fatalf("new_phi: %v", err)
	}
	v, _ := c.AppendInstr(b0, OpIntConst, constOperand(1), false)

	notPredecessor := func(block, predecessor BlockID) bool { return false }
	if err := c.PhiAttach(phi, b0, v, notPredecessor); err == nil {
		t.Fatalf("expected phi_attach to fail with inconsistent-phi")
	}

	isPredecessor := func(block, predecessor BlockID) bool { return true }
	if err := c.PhiAttach(phi, b0, v, isPredecessor); err != nil {
		t.Fatalf("phi_attach: %v", err)
	}
	p, _ := c.Phi(phi)
	if link, ok := p.Link(b0); !ok || link != v {
		t.Fatalf("phi link = (%d, %v), want (%d, true)", link, ok, v)
	}
}

func TestTraceVisitsEveryInput(t *testing.T) {
	c := NewCodeContainer()
	b := c.NewBlock()
	v1, _ := c.AppendInstr(b, OpIntConst, constOperand(1), false)
	v2, _ := c.AppendInstr(b, OpIntConst, constOperand(2), false)
	add, _ := c.AppendInstr(b, OpAdd, refsOperand(v1, v2), false)

	var pairs [][2]InstrID
	c.Trace(func(user, used InstrID) {
		pairs = append(pairs, [2]InstrID{user, used})
	})
	if len(pairs) != 2 {
		t.Fatalf("trace pairs = %v, want 2 entries for %d's two inputs", pairs, add)
	}
}

// simpleIndex is a DeadIndex over explicit alive sets, for tests that
// don't need the full analysis package.
type simpleIndex struct {
	aliveBlocks map[BlockID]bool
	aliveInstrs map[InstrID]bool
	preds       map[BlockID]map[BlockID]bool
}

func (idx *simpleIndex) IsBlockAlive(b BlockID) bool       { return idx.aliveBlocks[b] }
func (idx *simpleIndex) IsInstructionAlive(i InstrID) bool { return idx.aliveInstrs[i] }
func (idx *simpleIndex) IsBlockPredecessor(block, predecessor BlockID) bool {
	return idx.preds[block][predecessor]
}

// DCE of an unreachable block: one function, two blocks B0 (entry,
// return 0) and B1 (int_const 42; return). After DCE, B1 and its
// instructions are dropped.
func TestDropDeadRemovesUnreachableBlock(t *testing.T) {
	c := NewCodeContainer()
	b0 := c.NewBlock()
	b1 := c.NewBlock()

	zero, _ := c.AppendInstr(b0, OpIntConst, constOperand(0), false)
	c.AppendInstr(b0, OpReturn, refsOperand(zero), false)

	fortyTwo, _ := c.AppendInstr(b1, OpIntConst, constOperand(42), false)
	c.AppendInstr(b1, OpReturn, refsOperand(fortyTwo), false)

	idx := &simpleIndex{
		aliveBlocks: map[BlockID]bool{b0: true, b1: false},
		aliveInstrs: map[InstrID]bool{},
		preds:       map[BlockID]map[BlockID]bool{},
	}
	for _, id := range c.Blocks() {
		for _, iid := range mustBlock(c, id).Instructions(c) {
			idx.aliveInstrs[iid] = id == b0
		}
	}

	if err := c.DropDead(idx); err != nil {
		t.Fatalf("drop_dead: %v", err)
	}

	if _, ok := c.Block(b1); ok {
		t.Fatalf("expected B1 to be dropped")
	}
	if _, ok := c.Instr(fortyTwo); ok {
		t.Fatalf("expected B1's instructions to be dropped")
	}
	if len(c.Blocks()) != 1 {
		t.Fatalf("num_of_blocks = %d, want 1", len(c.Blocks()))
	}
}

func mustBlock(c *CodeContainer, id BlockID) *Block {
	b, ok := c.Block(id)
	if !ok {
		panic("block not found")
	}
	return b
}

func TestOpcodeStringRendersMnemonic(t *testing.T) {
	if got := OpAdd.String(); got != "add" {
		t.Fatalf("OpAdd.String() = %q, want %q", got, "add")
	}
	if got := Opcode(999).String(); got != "opcode(999)" {
		t.Fatalf("out-of-range Opcode.String() = %q, want %q", got, "opcode(999)")
	}
}
