package pipeline

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/kefir-lang/kefirgo/ir"
	"github.com/kefir-lang/kefirgo/schedule"
)

const blockHeaderFormat = "block %d:\n"
const instrLineFormat = "    %%%d = %s %s\n"
const phiLineFormat = "    %%%d = phi %v\n"

// Formatter dumps a function's code container to a structured text
// listing, in sibling-list order or, when a schedule is supplied, in
// scheduled order.
type Formatter struct {
	buf bytes.Buffer
}

// NewFormatter creates an empty formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// String returns the text accumulated so far.
func (f *Formatter) String() string {
	return f.buf.String()
}

// Format renders code's blocks and instructions in canonical traversal
// order. When sched is non-nil, instructions are listed in their
// scheduled linear order instead of sibling-list order, and carry
// their liveness range.
func (f *Formatter) Format(code *ir.CodeContainer, sched *schedule.Schedule) {
	blocks := code.Blocks()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	for _, bid := range blocks {
		fmt.Fprintf(&f.buf, blockHeaderFormat, bid)
		block, ok := code.Block(bid)
		if !ok {
			continue
		}
		for _, phiID := range block.Phis() {
			phi, _ := code.Phi(phiID)
			fmt.Fprintf(&f.buf, phiLineFormat, phi.Output, phi.Links())
		}

		var ids []ir.InstrID
		if sched != nil {
			if bsched, ok := sched.ScheduleOfBlock(bid); ok {
				ids = bsched.Instructions
			}
		} else {
			ids = block.Instructions(code)
		}

		for _, id := range ids {
			instr, ok := code.Instr(id)
			if !ok {
				continue
			}
			f.formatInstr(instr, sched)
		}
	}
}

func (f *Formatter) formatInstr(instr *ir.Instruction, sched *schedule.Schedule) {
	suffix := ""
	if sched != nil {
		if r, ok := sched.LivenessRange(instr.ID); ok {
			suffix = fmt.Sprintf(" ; live [%d,%d)", r.Begin, r.End)
		}
	}
	fmt.Fprintf(&f.buf, instrLineFormat, instr.ID, instr.Op, suffix)
}
