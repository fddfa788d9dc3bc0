package asmcmp

import (
	"sort"

	"github.com/kefir-lang/kefirgo/errkind"
)

// Stash is a set of virtual registers that must be preserved across a
// call or other clobbering point, tagged with the liveness index the
// clobber occurs at.
type Stash struct {
	ID            StashID
	Members       map[VRegID]bool
	LivenessIndex int
	hasIndex      bool
}

// StashNew allocates an empty stash.
func (c *Context) StashNew() StashID {
	id := StashID(c.nextStash)
	c.nextStash++
	c.stashes[id] = &Stash{ID: id, Members: make(map[VRegID]bool)}
	return id
}

// StashAdd adds vreg to the set id preserves.
func (c *Context) StashAdd(id StashID, vreg VRegID) error {
	s, ok := c.stashes[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "stash %d not found", id)
	}
	s.Members[vreg] = true
	return nil
}

// StashExclude removes vreg from the set id preserves.
func (c *Context) StashExclude(id StashID, vreg VRegID) error {
	s, ok := c.stashes[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "stash %d not found", id)
	}
	delete(s.Members, vreg)
	return nil
}

// StashSetLivenessIndex records the linear index id's clobber occurs
// at.
func (c *Context) StashSetLivenessIndex(id StashID, index int) error {
	s, ok := c.stashes[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "stash %d not found", id)
	}
	s.LivenessIndex = index
	s.hasIndex = true
	return nil
}

// StashHas reports whether id names an existing stash.
func (c *Context) StashHas(id StashID) bool {
	_, ok := c.stashes[id]
	return ok
}

// StashHasVirtual reports whether vreg is a member of stash id.
func (c *Context) StashHasVirtual(id StashID, vreg VRegID) bool {
	s, ok := c.stashes[id]
	if !ok {
		return false
	}
	return s.Members[vreg]
}

// StashVRegs returns id's member virtual registers in ascending order.
func (c *Context) StashVRegs(id StashID) []VRegID {
	s, ok := c.stashes[id]
	if !ok {
		return nil
	}
	out := make([]VRegID, 0, len(s.Members))
	for v := range s.Members {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StashLivenessIndex returns the liveness index previously set for id.
func (c *Context) StashLivenessIndex(id StashID) (int, bool) {
	s, ok := c.stashes[id]
	if !ok || !s.hasIndex {
		return 0, false
	}
	return s.LivenessIndex, true
}
