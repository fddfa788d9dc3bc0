package asmcmp

import (
	"fmt"

	"github.com/kefir-lang/kefirgo/errkind"
)

// FragmentKind tags one piece of an inline-assembly template.
type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentValue
)

// Fragment is one piece of an inline-assembly template: either literal
// text or an operand value to render in place.
type Fragment struct {
	Kind  FragmentKind
	Text  string
	Value Value
}

// InlineAsm is a template built from literal-text and operand-value
// fragments, interleaved in emission order.
type InlineAsm struct {
	ID        InlineAsmID
	Fragments []Fragment
}

// InlineAsmNew allocates an empty inline-assembly template.
func (c *Context) InlineAsmNew() InlineAsmID {
	id := InlineAsmID(c.nextInlineAsm)
	c.nextInlineAsm++
	c.inlineAsms[id] = &InlineAsm{ID: id}
	return id
}

// InlineAsmAddText appends a literal-text fragment to id's template.
func (c *Context) InlineAsmAddText(id InlineAsmID, text string) error {
	asm, ok := c.inlineAsms[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "inline-asm %d not found", id)
	}
	asm.Fragments = append(asm.Fragments, Fragment{Kind: FragmentText, Text: text})
	return nil
}

// InlineAsmAddValue appends an operand-value fragment to id's template.
func (c *Context) InlineAsmAddValue(id InlineAsmID, value Value) error {
	asm, ok := c.inlineAsms[id]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "inline-asm %d not found", id)
	}
	asm.Fragments = append(asm.Fragments, Fragment{Kind: FragmentValue, Value: value})
	return nil
}

// InlineAsmAddFormatted appends a literal-text fragment built with
// fmt.Sprintf, a convenience over InlineAsmAddText for fragments that
// interpolate register names, offsets or labels.
func (c *Context) InlineAsmAddFormatted(id InlineAsmID, format string, args ...interface{}) error {
	return c.InlineAsmAddText(id, fmt.Sprintf(format, args...))
}

// InlineAsmFragments returns id's template fragments in emission order.
func (c *Context) InlineAsmFragments(id InlineAsmID) ([]Fragment, error) {
	asm, ok := c.inlineAsms[id]
	if !ok {
		return nil, errkind.Wrap(errkind.NotFound, "inline-asm %d not found", id)
	}
	return asm.Fragments, nil
}
