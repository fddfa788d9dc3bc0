// Package analysis implements code structure analysis and liveness
// analysis: it borrows an *ir.CodeContainer, never mutates it, and must
// be freed before the container it borrows.
package analysis

import (
	"github.com/kefir-lang/kefirgo/container"
	"github.com/kefir-lang/kefirgo/errkind"
	"github.com/kefir-lang/kefirgo/ir"
)

// CodeStructure stores, per block, direct CFG predecessors/successors
// and an immediate dominator, plus module-wide reachability and
// indirect-jump-target sets.
type CodeStructure struct {
	code *ir.CodeContainer

	predecessors map[ir.BlockID][]ir.BlockID
	successors   map[ir.BlockID][]ir.BlockID
	idom         map[ir.BlockID]ir.BlockID

	reachable          map[ir.BlockID]bool
	indirectJumpTarget *container.OrderedSet[ir.BlockID]

	reversePostorder []ir.BlockID
}

// successorsOf returns the direct successor blocks of a block's
// terminator (or inline-asm jump targets).
func successorsOf(code *ir.CodeContainer, block ir.BlockID) []ir.BlockID {
	b, ok := code.Block(block)
	if !ok {
		return nil
	}
	term, ok := b.Terminator(code)
	if !ok {
		return nil
	}
	instr, _ := code.Instr(term)
	switch instr.Op {
	case ir.OpJump:
		return []ir.BlockID{instr.Operand.Branch.Target}
	case ir.OpBranch:
		return []ir.BlockID{instr.Operand.Branch.Target, instr.Operand.Branch.Alt}
	case ir.OpInlineAsm:
		node, _ := code.InlineAsm(instr.Operand.InlineAsm)
		out := make([]ir.BlockID, 0, len(node.JumpTargets)+1)
		if node.DefaultJumpTarget != ir.BlockID(ir.NoneID) {
			out = append(out, node.DefaultJumpTarget)
		}
		for _, tgt := range node.JumpTargets {
			out = append(out, tgt)
		}
		return out
	default:
		// return, unreachable, tail-call, ijump: no statically known
		// direct successor.
		return nil
	}
}

// indirectTargetsOf returns every block whose address is taken by an
// immediate block_ref in the function (ir.ImmBlockRef operands) or an
// inline-asm jump target, contributing to indirect_jump_target_blocks.
func indirectTargetsOf(code *ir.CodeContainer) *container.OrderedSet[ir.BlockID] {
	out := container.NewOrderedSet[ir.BlockID]()
	for _, bid := range code.Blocks() {
		b, _ := code.Block(bid)
		for _, iid := range b.Instructions(code) {
			instr, _ := code.Instr(iid)
			if instr.Operand.Imm.Kind == ir.ImmBlockRef && instr.Operand.Imm.BlockRef != ir.BlockID(ir.NoneID) {
				out.Add(instr.Operand.Imm.BlockRef)
			}
		}
		for _, aid := range b.ControlFlowInstructions(code) {
			instr, _ := code.Instr(aid)
			if instr.Op == ir.OpInlineAsm {
				node, _ := code.InlineAsm(instr.Operand.InlineAsm)
				for _, tgt := range node.JumpTargets {
					out.Add(tgt)
				}
			}
		}
	}
	return out
}

// Build computes reachability (BFS from entry_point), successor/
// predecessor lists, indirect-jump-target blocks, then dominators by
// the classical iterative "intersect" algorithm over a reverse-
// postorder traversal.
func Build(code *ir.CodeContainer) (*CodeStructure, error) {
	s := &CodeStructure{
		code:               code,
		predecessors:       make(map[ir.BlockID][]ir.BlockID),
		successors:         make(map[ir.BlockID][]ir.BlockID),
		idom:               make(map[ir.BlockID]ir.BlockID),
		reachable:          make(map[ir.BlockID]bool),
		indirectJumpTarget: indirectTargetsOf(code),
	}
	if code.EntryPoint == ir.BlockID(ir.NoneID) {
		return nil, errkind.Wrap(errkind.InvalidState, "code container has no entry point")
	}

	// reachability BFS from entry_point.
	queue := []ir.BlockID{code.EntryPoint}
	s.reachable[code.EntryPoint] = true
	var order []ir.BlockID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, succ := range successorsOf(code, cur) {
			if !s.reachable[succ] {
				s.reachable[succ] = true
				queue = append(queue, succ)
			}
		}
	}

	// successor/predecessor lists, over every block (not just reachable
	// ones, so block_direct_predecessor stays meaningful for phi_attach
	// checks performed before DCE runs).
	for _, bid := range code.Blocks() {
		succs := successorsOf(code, bid)
		s.successors[bid] = succs
		for _, succ := range succs {
			s.predecessors[succ] = append(s.predecessors[succ], bid)
		}
	}

	s.reversePostorder = reversePostorder(code, code.EntryPoint, s.successors)
	s.computeDominators()

	return s, nil
}

// reversePostorder returns a DFS postorder traversal from root, reversed.
func reversePostorder(code *ir.CodeContainer, root ir.BlockID, successors map[ir.BlockID][]ir.BlockID) []ir.BlockID {
	visited := make(map[ir.BlockID]bool)
	var post []ir.BlockID
	var visit func(ir.BlockID)
	visit = func(b ir.BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, succ := range successors[b] {
			visit(succ)
		}
		post = append(post, b)
	}
	visit(root)
	rpo := make([]ir.BlockID, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// computeDominators runs the classical iterative "intersect" algorithm
// (Cooper, Harvey & Kennedy) over the reverse-postorder traversal.
func (s *CodeStructure) computeDominators() {
	rpoIndex := make(map[ir.BlockID]int, len(s.reversePostorder))
	for i, b := range s.reversePostorder {
		rpoIndex[b] = i
	}

	entry := s.code.EntryPoint
	s.idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range s.reversePostorder {
			if b == entry {
				continue
			}
			var newIdom ir.BlockID
			found := false
			for _, p := range s.predecessors[b] {
				if _, ok := s.idom[p]; !ok {
					continue
				}
				if !found {
					newIdom = p
					found = true
					continue
				}
				newIdom = s.intersect(newIdom, p, rpoIndex)
			}
			if !found {
				continue
			}
			if prev, ok := s.idom[b]; !ok || prev != newIdom {
				s.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (s *CodeStructure) intersect(a, b ir.BlockID, rpoIndex map[ir.BlockID]int) ir.BlockID {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = s.idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = s.idom[b]
		}
	}
	return a
}

// IsReachableFromEntry reports whether block was visited by the
// build-time reachability BFS.
func (s *CodeStructure) IsReachableFromEntry(block ir.BlockID) bool {
	return s.reachable[block]
}

// BlockDirectPredecessor reports whether a is a direct predecessor of b.
func (s *CodeStructure) BlockDirectPredecessor(a, b ir.BlockID) bool {
	for _, p := range s.predecessors[b] {
		if p == a {
			return true
		}
	}
	return false
}

// IsDominator reports whether dominator dominates dominated, by walking
// the immediate-dominator chain.
func (s *CodeStructure) IsDominator(dominated, dominator ir.BlockID) bool {
	cur := dominated
	for {
		if cur == dominator {
			return true
		}
		next, ok := s.idom[cur]
		if !ok || next == cur {
			return cur == dominator
		}
		cur = next
	}
}

// Predecessors returns block's direct predecessors.
func (s *CodeStructure) Predecessors(block ir.BlockID) []ir.BlockID {
	return append([]ir.BlockID(nil), s.predecessors[block]...)
}

// Successors returns block's direct successors.
func (s *CodeStructure) Successors(block ir.BlockID) []ir.BlockID {
	return append([]ir.BlockID(nil), s.successors[block]...)
}

// IndirectJumpTargetBlocks returns every block whose address is taken,
// sorted by id (the scheduler treats these as additional roots).
func (s *CodeStructure) IndirectJumpTargetBlocks() []ir.BlockID {
	return append([]ir.BlockID(nil), s.indirectJumpTarget.Items()...)
}

// ReversePostorder returns the block order computed from entry_point.
func (s *CodeStructure) ReversePostorder() []ir.BlockID {
	return append([]ir.BlockID(nil), s.reversePostorder...)
}
