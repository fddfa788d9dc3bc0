package asmcmp

import "github.com/kefir-lang/kefirgo/errkind"

// NewLabel allocates a new label. If attachTo is not NoneIndex, the
// label is bound there immediately; otherwise it starts unbound.
func (c *Context) NewLabel(attachTo InstrIndex) (LabelID, error) {
	id := LabelID(c.nextLabel)
	c.nextLabel++
	label := &Label{ID: id, Position: NoneIndex, prev: LabelID(NoneID), next: LabelID(NoneID)}
	c.labels[id] = label

	if attachTo == NoneIndex {
		return id, nil
	}
	if err := c.BindLabel(id, attachTo); err != nil {
		return LabelID(NoneID), err
	}
	return id, nil
}

// LabelAt returns the instruction index a bound label precedes.
func (c *Context) LabelAt(id LabelID) (InstrIndex, error) {
	label, ok := c.labels[id]
	if !ok {
		return NoneIndex, errkind.Wrap(errkind.NotFound, "label %d not found", id)
	}
	if !label.Bound {
		return NoneIndex, errkind.Wrap(errkind.InvalidState, "label %d is not bound", id)
	}
	return label.Position, nil
}

// BindLabel binds id to precede the instruction at index, unbinding it
// from its previous position first if it was already bound. index may
// be afterTail (via BindAfterTail) as well as any live instruction
// index.
func (c *Context) BindLabel(id LabelID, index InstrIndex) error {
	label, ok := c.labels[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "label %d not found", id)
	}
	if index != afterTail {
		if _, ok := c.instrs[index]; !ok {
			return errkind.Wrap(errkind.NotFound, "instruction %d not found", index)
		}
	}

	if label.Bound {
		c.detach(label)
	}

	head, ok := c.labelsAt[index]
	if !ok {
		head = LabelID(NoneID)
	}
	label.Position = index
	label.Bound = true
	label.prev = LabelID(NoneID)
	label.next = head
	if head != LabelID(NoneID) {
		c.labels[head].prev = id
	}
	c.labelsAt[index] = id
	return nil
}

// BindAfterTail binds id to the virtual position following the last
// instruction in the stream.
func (c *Context) BindAfterTail(id LabelID) error {
	return c.BindLabel(id, afterTail)
}

// UnbindLabel detaches id from its current position, if any, leaving it
// a valid but unbound label id.
func (c *Context) UnbindLabel(id LabelID) error {
	label, ok := c.labels[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "label %d not found", id)
	}
	if !label.Bound {
		return nil
	}
	c.detach(label)
	label.Bound = false
	label.Position = NoneIndex
	return nil
}

func (c *Context) detach(label *Label) {
	if label.prev != LabelID(NoneID) {
		c.labels[label.prev].next = label.next
	} else {
		if label.next != LabelID(NoneID) {
			c.labelsAt[label.Position] = label.next
		} else {
			delete(c.labelsAt, label.Position)
		}
	}
	if label.next != LabelID(NoneID) {
		c.labels[label.next].prev = label.prev
	}
	label.prev = LabelID(NoneID)
	label.next = LabelID(NoneID)
}

// MoveLabels rebinds every label currently bound to from onto to,
// leaving from with no bound labels.
func (c *Context) MoveLabels(from, to InstrIndex) error {
	if _, ok := c.instrs[to]; to != afterTail && !ok {
		return errkind.Wrap(errkind.NotFound, "instruction %d not found", to)
	}
	id, ok := c.labelsAt[from]
	if !ok {
		return nil
	}
	for id != LabelID(NoneID) {
		next := c.labels[id].next
		if err := c.BindLabel(id, to); err != nil {
			return err
		}
		id = next
	}
	return nil
}

// LabelHead returns the first label bound to index, if any.
func (c *Context) LabelHead(index InstrIndex) (LabelID, bool) {
	id, ok := c.labelsAt[index]
	return id, ok && id != LabelID(NoneID)
}

// LabelNext returns the next label in id's sibling chain.
func (c *Context) LabelNext(id LabelID) (LabelID, bool) {
	label, ok := c.labels[id]
	if !ok || label.next == LabelID(NoneID) {
		return LabelID(NoneID), false
	}
	return label.next, true
}

// LabelPrev returns the previous label in id's sibling chain.
func (c *Context) LabelPrev(id LabelID) (LabelID, bool) {
	label, ok := c.labels[id]
	if !ok || label.prev == LabelID(NoneID) {
		return LabelID(NoneID), false
	}
	return label.prev, true
}

// LabelAddPublicName records a public (externally visible) name for id,
// interned through the context's string pool.
func (c *Context) LabelAddPublicName(id LabelID, name string) error {
	label, ok := c.labels[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "label %d not found", id)
	}
	c.strings.Intern(name)
	if label.PublicNames == nil {
		label.PublicNames = make(map[string]bool)
	}
	label.PublicNames[name] = true
	return nil
}

// LabelMarkExternalDependencies flags id as referenced by a relocation
// or other external fixup, so passes that otherwise drop unused labels
// must keep it.
func (c *Context) LabelMarkExternalDependencies(id LabelID) error {
	label, ok := c.labels[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "label %d not found", id)
	}
	label.HasExternalDependencies = true
	return nil
}

// Label looks up a label's current state.
func (c *Context) Label(id LabelID) (*Label, bool) {
	l, ok := c.labels[id]
	return l, ok
}
