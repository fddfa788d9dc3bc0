package ir

// Block is a basic block: a sibling-linked instruction list plus the
// separate control-flow-only sublist, and the set of phis/calls/inline
// asm nodes it owns.
type Block struct {
	ID BlockID

	head, tail         InstrID
	ctrlHead, ctrlTail InstrID

	phis       []PhiID
	calls      []CallID
	inlineAsms []InlineAsmID

	publicNames map[string]bool
}

func newBlock(id BlockID) *Block {
	return &Block{
		ID:          id,
		head:        InstrID(NoneID),
		tail:        InstrID(NoneID),
		ctrlHead:    InstrID(NoneID),
		ctrlTail:    InstrID(NoneID),
		publicNames: make(map[string]bool),
	}
}

// Instructions returns the block's instruction ids in sibling order.
func (b *Block) Instructions(c *CodeContainer) []InstrID {
	var out []InstrID
	for id := b.head; id != InstrID(NoneID); {
		out = append(out, id)
		id = c.instrs[id].next
	}
	return out
}

// ControlFlowInstructions returns the block's control-flow sublist in
// sibling order.
func (b *Block) ControlFlowInstructions(c *CodeContainer) []InstrID {
	var out []InstrID
	for id := b.ctrlHead; id != InstrID(NoneID); {
		out = append(out, id)
		id = c.instrs[id].ctrlNext
	}
	return out
}

// Terminator returns the block's terminator instruction, if the last
// control-flow instruction is one.
func (b *Block) Terminator(c *CodeContainer) (InstrID, bool) {
	if b.ctrlTail == InstrID(NoneID) {
		return InstrID(NoneID), false
	}
	instr := c.instrs[b.ctrlTail]
	if !isTerminator(instr.Op) {
		return InstrID(NoneID), false
	}
	return instr.ID, true
}

// Phis returns the block's owned phi ids.
func (b *Block) Phis() []PhiID { return append([]PhiID(nil), b.phis...) }
