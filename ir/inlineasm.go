package ir

// InlineAsmParam is one parameter binding of an inline-assembly
// fragment: an optional value to read and an optional location to
// store the result back into.
type InlineAsmParam struct {
	ReadRef  InstrID
	StoreRef InstrID
}

// InlineAsmNode is an inline-assembly fragment embedded in a block. Its
// jump targets map an external identifier used by the template text to
// a target block, with DefaultJumpTarget used when no identifier
// matches (or the fragment falls through).
type InlineAsmNode struct {
	ID                InlineAsmID
	Block             BlockID
	Template          string
	Parameters        []InlineAsmParam
	DefaultJumpTarget BlockID
	JumpTargets       map[string]BlockID
}

func newInlineAsmNode(id InlineAsmID, block BlockID, template string) *InlineAsmNode {
	return &InlineAsmNode{
		ID:                id,
		Block:             block,
		Template:          template,
		DefaultJumpTarget: BlockID(NoneID),
		JumpTargets:       make(map[string]BlockID),
	}
}
