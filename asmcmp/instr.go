package asmcmp

// Instructions returns every live instruction index from head to tail,
// in stream order.
func (c *Context) Instructions() []InstrIndex {
	out := make([]InstrIndex, 0, len(c.instrs))
	for i := c.head; i != NoneIndex; {
		out = append(out, i)
		instr := c.instrs[i]
		i = instr.next
	}
	return out
}

// replaceLabelInValue rewrites any reference to from inside v into to,
// returning the (possibly unchanged) value.
func replaceLabelInValue(v Value, from, to LabelID) Value {
	switch v.Kind {
	case OperandInternalLabel:
		if v.InternalLabel == from {
			v.InternalLabel = to
		}
	case OperandIndirect:
		if v.Indirect.Basis == BasisInternalLabel && v.Indirect.Label == from {
			v.Indirect.Label = to
		}
	case OperandRIPRelative:
		if v.RIP.Label == from {
			v.RIP.Label = to
		}
	}
	return v
}

// ReplaceLabels rewrites every operand referencing from across the
// entire instruction stream to reference to instead. It does not move
// the label's own binding; callers that also want to rebind use
// MoveLabels or BindLabel separately.
func (c *Context) ReplaceLabels(from, to LabelID) {
	for _, instr := range c.instrs {
		for i := 0; i < instr.NumArgs; i++ {
			instr.Args[i] = replaceLabelInValue(instr.Args[i], from, to)
		}
	}
}
