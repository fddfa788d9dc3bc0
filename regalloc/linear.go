package regalloc

import (
	"sort"

	"github.com/kefir-lang/kefirgo/errkind"
	"github.com/kefir-lang/kefirgo/ir"
	"github.com/kefir-lang/kefirgo/schedule"
)

// ConstraintKind classifies which register class (if any) an
// instruction's output needs allocated.
type ConstraintKind int

const (
	ConstraintSkip ConstraintKind = iota
	ConstraintGeneralPurpose
	ConstraintFloatingPoint
)

// Constraint is the per-instruction allocation request: a register
// class plus optional register/alias hints.
type Constraint struct {
	Kind         ConstraintKind
	RegisterHint *ID
	AliasHint    *ir.InstrID
}

type instrState struct {
	done       bool
	allocation ID
}

// LinearRegAllocator is the constraint-driven linear-scan allocator
// that consumes a schedule.Schedule and assigns a VRegAllocator id to
// every non-skipped instruction.
type LinearRegAllocator struct {
	code     *ir.CodeContainer
	sched    *schedule.Schedule
	gp       *VRegAllocator
	fp       *VRegAllocator
	order    []ir.InstrID
	constraints map[ir.InstrID]*Constraint
	state    map[ir.InstrID]*instrState
	conflicts map[ir.InstrID]map[ir.InstrID]bool
}

// NewLinearRegAllocator creates an allocator over order (instructions
// in ascending linear-index order) with the given constraints, backed
// by gp general-purpose and fp floating-point physical-register pools.
func NewLinearRegAllocator(code *ir.CodeContainer, sched *schedule.Schedule, order []ir.InstrID, constraints map[ir.InstrID]*Constraint, gp, fp *VRegAllocator) *LinearRegAllocator {
	a := &LinearRegAllocator{
		code:        code,
		sched:       sched,
		gp:          gp,
		fp:          fp,
		order:       order,
		constraints: constraints,
		state:       make(map[ir.InstrID]*instrState, len(order)),
	}
	for _, id := range order {
		a.state[id] = &instrState{allocation: -1}
	}
	a.conflicts = buildConflictGraph(sched, order)
	return a
}

// buildConflictGraph builds the undirected conflict graph from
// simultaneous liveness at any linear point: two instructions conflict
// if their liveness ranges overlap.
func buildConflictGraph(sched *schedule.Schedule, order []ir.InstrID) map[ir.InstrID]map[ir.InstrID]bool {
	graph := make(map[ir.InstrID]map[ir.InstrID]bool, len(order))
	for _, id := range order {
		graph[id] = make(map[ir.InstrID]bool)
	}
	for i, a := range order {
		ra, ok := sched.LivenessRange(a)
		if !ok {
			continue
		}
		for j := i + 1; j < len(order); j++ {
			b := order[j]
			rb, ok := sched.LivenessRange(b)
			if !ok {
				continue
			}
			if ra.Begin < rb.End && rb.Begin < ra.End {
				graph[a][b] = true
				graph[b][a] = true
			}
		}
	}
	return graph
}

// PropagateHints runs pass 1: walking instructions in reverse linear
// order, whenever an instruction has both a register hint and an alias
// hint pointing to an earlier instruction with no register hint, the
// alias inherits the register hint.
func (a *LinearRegAllocator) PropagateHints() {
	for i := len(a.order) - 1; i >= 0; i-- {
		id := a.order[i]
		c := a.constraints[id]
		if c == nil || c.RegisterHint == nil || c.AliasHint == nil {
			continue
		}
		aliasConstraint := a.constraints[*c.AliasHint]
		if aliasConstraint == nil || aliasConstraint.RegisterHint != nil {
			continue
		}
		hint := *c.RegisterHint
		aliasConstraint.RegisterHint = &hint
	}
}

func poolFor(a *LinearRegAllocator, kind ConstraintKind) *VRegAllocator {
	if kind == ConstraintFloatingPoint {
		return a.fp
	}
	return a.gp
}

// Allocate runs pass 2: walking instructions in linear order,
// deallocating instructions whose liveness has ended, then allocating
// each live instruction in (hint, alias, filtered-register,
// allocate_any) priority order.
func (a *LinearRegAllocator) Allocate() error {
	a.PropagateHints()

	alive := make(map[ir.InstrID]bool)
	for idx := 0; idx < len(a.order); idx++ {
		id := a.order[idx]
		if _, ok := a.sched.LivenessRange(id); !ok {
			continue
		}
		linearIdx, _ := a.sched.LinearIndex(id)

		for other := range alive {
			ro, _ := a.sched.LivenessRange(other)
			if ro.End <= linearIdx {
				st := a.state[other]
				pool := poolFor(a, a.constraints[other].Kind)
				pool.Deallocate(st.allocation)
				delete(alive, other)
			}
		}

		c := a.constraints[id]
		if c == nil || c.Kind == ConstraintSkip {
			continue
		}
		pool := poolFor(a, c.Kind)

		conflictHints := make(map[ID]bool)
		for other := range a.conflicts[id] {
			if a.constraints[other] == nil || a.constraints[other].Kind != c.Kind {
				continue
			}
			if st := a.state[other]; st.done {
				conflictHints[st.allocation] = true
				continue
			}
			if a.constraints[other].RegisterHint != nil {
				conflictHints[*a.constraints[other].RegisterHint] = true
			}
		}

		var allocated ID
		var err error
		switch {
		case c.RegisterHint != nil && !conflictHints[*c.RegisterHint]:
			allocated = *c.RegisterHint
			if !pool.TryAllocate(allocated) {
				allocated, err = pool.AllocateRegister(func(i int) bool { return !conflictHints[ID(i)] })
			}
		case c.AliasHint != nil && a.state[*c.AliasHint] != nil && a.state[*c.AliasHint].done && !conflictHints[a.state[*c.AliasHint].allocation]:
			allocated = a.state[*c.AliasHint].allocation
			if !pool.TryAllocate(allocated) {
				allocated, err = pool.AllocateRegister(func(i int) bool { return !conflictHints[ID(i)] })
			}
		default:
			allocated, err = pool.AllocateRegister(func(i int) bool { return !conflictHints[ID(i)] })
		}

		if err != nil {
			if err != errkind.OutOfSpace {
				return err
			}
			// out-of-space fallback: allocate_any, which grows into the
			// storage pool. No spill/reload pass runs before this is
			// reached; the value keeps its storage slot until its
			// liveness range ends.
			allocated = pool.AllocateAny(func(i int) bool { return !conflictHints[ID(i)] })
		}

		st := a.state[id]
		st.done = true
		st.allocation = allocated
		alive[id] = true
	}
	return nil
}

// AllocationOf returns the physical register or storage slot assigned
// to instr.
func (a *LinearRegAllocator) AllocationOf(instr ir.InstrID) (ID, bool) {
	st, ok := a.state[instr]
	if !ok || !st.done {
		return 0, false
	}
	return st.allocation, true
}

// SortByLinearIndex returns ids sorted by their schedule-assigned
// linear index, the order Allocate expects.
func SortByLinearIndex(sched *schedule.Schedule, ids []ir.InstrID) []ir.InstrID {
	out := append([]ir.InstrID(nil), ids...)
	sort.Slice(out, func(i, j int) bool {
		a, _ := sched.LinearIndex(out[i])
		b, _ := sched.LinearIndex(out[j])
		return a < b
	})
	return out
}
