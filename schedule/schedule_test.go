package schedule

import (
	"testing"

	"github.com/kefir-lang/kefirgo/analysis"
	"github.com/kefir-lang/kefirgo/ir"
)

func refs(rs ...ir.InstrID) ir.Operand {
	var op ir.Operand
	op.NumRefs = len(rs)
	for i, r := range rs {
		op.Refs[i] = r
	}
	return op
}

func jumpOperand(target ir.BlockID) ir.Operand {
	return ir.Operand{Branch: ir.BranchOperand{Target: target, Alt: ir.BlockID(ir.NoneID), Condition: ir.InstrID(ir.NoneID)}}
}

// Diamond CFG with a phi merging at the join block.
func TestScheduleDiamondPhiLivenessRange(t *testing.T) {
	c := ir.NewCodeContainer()
	b0 := c.NewBlock()
	b1 := c.NewBlock()
	b2 := c.NewBlock()
	b3 := c.NewBlock()

	cond, _ := c.AppendInstr(b0, ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if _, err := c.AppendInstr(b0, ir.OpBranch, ir.Operand{Branch: ir.BranchOperand{Target: b1, Alt: b2, Condition: cond}}, false); err != nil {
		t.Fatalf("append branch: %v", err)
	}

	v1, _ := c.AppendInstr(b1, ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if _, err := c.AppendInstr(b1, ir.OpJump, jumpOperand(b3), false); err != nil {
		t.Fatalf("append jump b1: %v", err)
	}

	v2, _ := c.AppendInstr(b2, ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if _, err := c.AppendInstr(b2, ir.OpJump, jumpOperand(b3), false); err != nil {
		t.Fatalf("append jump b2: %v", err)
	}

	phi, err := c.NewPhi(b3)
	if err != nil {
		t.Fatalf("new_phi: %v", err)
	}
	v3, _ := c.AppendInstr(b3, ir.OpPhi, ir.Operand{Phi: phi}, false)
	if _, err := c.AppendInstr(b3, ir.OpReturn, refs(v3), false); err != nil {
		t.Fatalf("append return: %v", err)
	}

	isPred := func(block, predecessor ir.BlockID) bool {
		return block == b3 && (predecessor == b1 || predecessor == b2)
	}
	if err := c.PhiAttach(phi, b1, v1, isPred); err != nil {
		t.Fatalf("phi_attach b1: %v", err)
	}
	if err := c.PhiAttach(phi, b2, v2, isPred); err != nil {
		t.Fatalf("phi_attach b2: %v", err)
	}

	structure, err := analysis.Build(c)
	if err != nil {
		t.Fatalf("build structure: %v", err)
	}
	liveness := analysis.BuildLiveness(c, structure)
	sched, err := Build(c, structure, liveness, nil, nil)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}

	phiIdx, ok := sched.LinearIndex(v3)
	if !ok {
		t.Fatalf("phi output v3 was not scheduled")
	}
	r1, ok := sched.LivenessRange(v1)
	if !ok {
		t.Fatalf("v1 was not scheduled")
	}
	if r1.End != phiIdx+1 {
		t.Fatalf("liveness_range(v1).end = %d, want %d", r1.End, phiIdx+1)
	}
	r2, ok := sched.LivenessRange(v2)
	if !ok {
		t.Fatalf("v2 was not scheduled")
	}
	if r2.End != phiIdx+1 {
		t.Fatalf("liveness_range(v2).end = %d, want %d", r2.End, phiIdx+1)
	}
}

// After DCE drops an unreachable block, the schedule built over the
// remaining code reports a single block.
func TestScheduleNumOfBlocksAfterDropDead(t *testing.T) {
	c := ir.NewCodeContainer()
	b0 := c.NewBlock()
	b1 := c.NewBlock()

	zero, _ := c.AppendInstr(b0, ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if _, err := c.AppendInstr(b0, ir.OpReturn, refs(zero), false); err != nil {
		t.Fatalf("append return b0: %v", err)
	}
	fortyTwo, _ := c.AppendInstr(b1, ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if _, err := c.AppendInstr(b1, ir.OpReturn, refs(fortyTwo), false); err != nil {
		t.Fatalf("append return b1: %v", err)
	}

	structureBefore, err := analysis.Build(c)
	if err != nil {
		t.Fatalf("build structure: %v", err)
	}
	if structureBefore.IsReachableFromEntry(b1) {
		t.Fatalf("b1 should not be reachable from entry")
	}

	index := &dceIndex{code: c, structure: structureBefore}
	if err := c.DropDead(index); err != nil {
		t.Fatalf("drop_dead: %v", err)
	}

	structureAfter, err := analysis.Build(c)
	if err != nil {
		t.Fatalf("rebuild structure: %v", err)
	}
	liveness := analysis.BuildLiveness(c, structureAfter)
	sched, err := Build(c, structureAfter, liveness, nil, nil)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}
	if sched.NumOfBlocks() != 1 {
		t.Fatalf("num_of_blocks = %d, want 1", sched.NumOfBlocks())
	}
}

type dceIndex struct {
	code      *ir.CodeContainer
	structure *analysis.CodeStructure
}

func (d *dceIndex) IsBlockAlive(b ir.BlockID) bool { return d.structure.IsReachableFromEntry(b) }
func (d *dceIndex) IsInstructionAlive(i ir.InstrID) bool {
	instr, ok := d.code.Instr(i)
	return ok && d.structure.IsReachableFromEntry(instr.Block)
}
func (d *dceIndex) IsBlockPredecessor(block, predecessor ir.BlockID) bool {
	return d.structure.BlockDirectPredecessor(predecessor, block)
}
