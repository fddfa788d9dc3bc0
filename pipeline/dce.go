package pipeline

import (
	"github.com/kefir-lang/kefirgo/analysis"
	"github.com/kefir-lang/kefirgo/ir"
)

// DeadCodeElimination drops every block unreachable from the entry
// point and every instruction with no remaining use, in one combined
// drop_dead pass.
type DeadCodeElimination struct{}

// Name identifies this pass in a Registry.
func (DeadCodeElimination) Name() string { return "dead-code-elimination" }

// Run implements Pass.
func (DeadCodeElimination) Run(code *ir.CodeContainer, structure *analysis.CodeStructure, liveness *analysis.CodeLiveness) error {
	idx := &reachabilityIndex{structure: structure, liveness: liveness}
	return code.DropDead(idx)
}

// reachabilityIndex adapts CodeStructure/CodeLiveness to ir.DeadIndex.
type reachabilityIndex struct {
	structure *analysis.CodeStructure
	liveness  *analysis.CodeLiveness
}

func (idx *reachabilityIndex) IsBlockAlive(b ir.BlockID) bool {
	return idx.structure.IsReachableFromEntry(b)
}

func (idx *reachabilityIndex) IsInstructionAlive(i ir.InstrID) bool {
	return idx.liveness.InstructionIsAlive(i)
}

func (idx *reachabilityIndex) IsBlockPredecessor(block, predecessor ir.BlockID) bool {
	return idx.structure.BlockDirectPredecessor(predecessor, block)
}
