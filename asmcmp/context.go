package asmcmp

import (
	"github.com/kefir-lang/kefirgo/container"
	"github.com/kefir-lang/kefirgo/debug"
	"github.com/kefir-lang/kefirgo/errkind"
)

// Instr is one node of the asmcmp linear instruction stream.
type Instr struct {
	Index   InstrIndex
	Opcode  string
	Args    [3]Value
	NumArgs int

	prev, next InstrIndex
}

// afterTail is the sentinel instruction index bind_after_tail uses to
// attach a label past the last instruction.
const afterTail InstrIndex = -2

// Label is a first-class table entry attached to an instruction index,
// or unbound.
type Label struct {
	ID                      LabelID
	Bound                   bool
	Position                InstrIndex
	PublicNames             map[string]bool
	HasExternalDependencies bool

	prev, next LabelID // sibling chain of labels bound to the same position
}

// Context is the asmcmp context: a dense instruction list linked as
// head/tail doubly-linked, a label table, a virtual-register table, a
// stash table, an inline-assembly table, a string pool and a debug
// source map.
type Context struct {
	instrs    map[InstrIndex]*Instr
	nextIndex int64
	head, tail InstrIndex

	labels     map[LabelID]*Label
	nextLabel  uint32
	labelsAt   map[InstrIndex]LabelID // chain head per bound position

	vregs    map[VRegID]*VReg
	nextVReg uint32

	stashes    map[StashID]*Stash
	nextStash  uint32

	inlineAsms    map[InlineAsmID]*InlineAsm
	nextInlineAsm uint32

	strings   *container.StringPool
	SourceMap *debug.SourceMap
}

// NewContext creates an empty asmcmp context.
func NewContext() *Context {
	return &Context{
		instrs:    make(map[InstrIndex]*Instr),
		head:      NoneIndex,
		tail:      NoneIndex,
		labels:    make(map[LabelID]*Label),
		labelsAt:  make(map[InstrIndex]LabelID),
		vregs:     make(map[VRegID]*VReg),
		stashes:   make(map[StashID]*Stash),
		inlineAsms: make(map[InlineAsmID]*InlineAsm),
		strings:   container.NewStringPool(),
		SourceMap: debug.NewSourceMap(),
	}
}

// AnnotateSource records that instructions [begin,end) originate from
// loc, via the context's debug source map.
func (c *Context) AnnotateSource(begin, end InstrIndex, loc debug.Location) error {
	return c.SourceMap.Annotate(int64(begin), int64(end), loc)
}

// SourceOf returns the source location covering index, if the map has
// one.
func (c *Context) SourceOf(index InstrIndex) (debug.Location, bool) {
	return c.SourceMap.At(int64(index))
}

// Head returns the first instruction index, or NoneIndex if empty.
func (c *Context) Head() InstrIndex { return c.head }

// Tail returns the last instruction index, or NoneIndex if empty.
func (c *Context) Tail() InstrIndex { return c.tail }

// Instr looks up an instruction by index.
func (c *Context) Instr(index InstrIndex) (*Instr, bool) {
	i, ok := c.instrs[index]
	return i, ok
}

// Next returns the instruction index following index.
func (c *Context) Next(index InstrIndex) (InstrIndex, bool) {
	i, ok := c.instrs[index]
	if !ok {
		return NoneIndex, false
	}
	return i.next, i.next != NoneIndex
}

// InstrInsertAfter inserts a new instruction right after afterIndex
// (or as the new head if afterIndex is NoneIndex), returning its index.
func (c *Context) InstrInsertAfter(afterIndex InstrIndex, opcode string, args ...Value) (InstrIndex, error) {
	if afterIndex != NoneIndex {
		if _, ok := c.instrs[afterIndex]; !ok {
			return NoneIndex, errkind.Wrap(errkind.NotFound, "instruction %d not found", afterIndex)
		}
	}
	if len(args) > 3 {
		return NoneIndex, errkind.Wrap(errkind.InvalidParameter, "asmcmp instructions take at most 3 arguments, got %d", len(args))
	}

	idx := InstrIndex(c.nextIndex)
	c.nextIndex++
	instr := &Instr{Index: idx, Opcode: opcode, NumArgs: len(args), prev: NoneIndex, next: NoneIndex}
	copy(instr.Args[:], args)
	c.instrs[idx] = instr

	if afterIndex == NoneIndex {
		instr.next = c.head
		if c.head != NoneIndex {
			c.instrs[c.head].prev = idx
		} else {
			c.tail = idx
		}
		c.head = idx
		return idx, nil
	}

	after := c.instrs[afterIndex]
	instr.prev = afterIndex
	instr.next = after.next
	if after.next != NoneIndex {
		c.instrs[after.next].prev = idx
	} else {
		c.tail = idx
	}
	after.next = idx
	return idx, nil
}

// InstrReplace swaps an instruction's opcode/args in place, preserving
// sibling links.
func (c *Context) InstrReplace(index InstrIndex, opcode string, args ...Value) error {
	instr, ok := c.instrs[index]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "instruction %d not found", index)
	}
	if len(args) > 3 {
		return errkind.Wrap(errkind.InvalidParameter, "asmcmp instructions take at most 3 arguments, got %d", len(args))
	}
	instr.Opcode = opcode
	instr.Args = [3]Value{}
	instr.NumArgs = len(args)
	copy(instr.Args[:], args)
	return nil
}

// InstrDrop unlinks index from the sibling chain and from any labels
// bound to it; those labels become unbound but keep their id.
func (c *Context) InstrDrop(index InstrIndex) error {
	instr, ok := c.instrs[index]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "instruction %d not found", index)
	}

	if instr.prev != NoneIndex {
		c.instrs[instr.prev].next = instr.next
	} else {
		c.head = instr.next
	}
	if instr.next != NoneIndex {
		c.instrs[instr.next].prev = instr.prev
	} else {
		c.tail = instr.prev
	}

	c.unbindAllAt(index)

	delete(c.instrs, index)
	return nil
}

func (c *Context) unbindAllAt(index InstrIndex) {
	id, ok := c.labelsAt[index]
	if !ok {
		return
	}
	for id != LabelID(NoneID) {
		label := c.labels[id]
		next := label.next
		label.Bound = false
		label.Position = NoneIndex
		label.prev = LabelID(NoneID)
		label.next = LabelID(NoneID)
		id = next
	}
	delete(c.labelsAt, index)
}
