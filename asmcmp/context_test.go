package asmcmp

import (
	"testing"

	"github.com/kefir-lang/kefirgo/debug"
)

func TestInstrInsertAfterBuildsStream(t *testing.T) {
	c := NewContext()
	i1, err := c.InstrInsertAfter(NoneIndex, "mov", ImmInt(1))
	if err != nil {
		t.Fatalf("insert i1: %v", err)
	}
	i2, err := c.InstrInsertAfter(i1, "add", ImmInt(2))
	if err != nil {
		t.Fatalf("insert i2: %v", err)
	}
	i3, err := c.InstrInsertAfter(NoneIndex, "nop")
	if err != nil {
		t.Fatalf("insert i3 as new head: %v", err)
	}

	if c.Head() != i3 {
		t.Fatalf("head = %d, want %d", c.Head(), i3)
	}
	if c.Tail() != i2 {
		t.Fatalf("tail = %d, want %d", c.Tail(), i2)
	}
	next, ok := c.Next(i3)
	if !ok || next != i1 {
		t.Fatalf("next(i3) = (%d, %v), want (%d, true)", next, ok, i1)
	}
}

func TestInstrReplacePreservesLinks(t *testing.T) {
	c := NewContext()
	i1, _ := c.InstrInsertAfter(NoneIndex, "mov", ImmInt(1))
	i2, _ := c.InstrInsertAfter(i1, "add", ImmInt(2))
	i3, _ := c.InstrInsertAfter(i2, "sub", ImmInt(3))

	if err := c.InstrReplace(i2, "mul", ImmInt(9)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	instr, ok := c.Instr(i2)
	if !ok || instr.Opcode != "mul" || instr.NumArgs != 1 || instr.Args[0].Int != 9 {
		t.Fatalf("instr after replace = %+v", instr)
	}
	if next, ok := c.Next(i1); !ok || next != i2 {
		t.Fatalf("i1.next = (%d, %v), want (%d, true)", next, ok, i2)
	}
	if next, ok := c.Next(i2); !ok || next != i3 {
		t.Fatalf("i2.next = (%d, %v), want (%d, true)", next, ok, i3)
	}
}

func TestInstrDropUnbindsLabels(t *testing.T) {
	c := NewContext()
	i1, _ := c.InstrInsertAfter(NoneIndex, "mov", ImmInt(1))
	i2, _ := c.InstrInsertAfter(i1, "add", ImmInt(2))

	label, err := c.NewLabel(i1)
	if err != nil {
		t.Fatalf("new_label: %v", err)
	}

	if err := c.InstrDrop(i1); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if c.Head() != i2 {
		t.Fatalf("head after drop = %d, want %d", c.Head(), i2)
	}
	if _, err := c.LabelAt(label); err == nil {
		t.Fatalf("expected label_at to fail once its instruction is dropped")
	}
	if _, ok := c.Label(label); !ok {
		t.Fatalf("label id should still be valid after its instruction is dropped")
	}
}

func TestVRegStashInlineAsmTables(t *testing.T) {
	c := NewContext()

	v1, err := c.VRegNew(VRegGeneralPurpose, Width64)
	if err != nil {
		t.Fatalf("vreg_new: %v", err)
	}
	spill := c.VRegNewSpill(true, Width64)
	if err := c.VRegSetSpillSpaceSize(spill, 8); err != nil {
		t.Fatalf("set spill space size: %v", err)
	}
	if err := c.VRegSpecifyTypeDependent(v1); err != nil {
		t.Fatalf("specify type dependent: %v", err)
	}
	if vr, ok := c.VReg(v1); !ok || !vr.TypeDependent {
		t.Fatalf("vreg %d should be marked type-dependent", v1)
	}

	stash := c.StashNew()
	if err := c.StashAdd(stash, v1); err != nil {
		t.Fatalf("stash_add: %v", err)
	}
	if !c.StashHasVirtual(stash, v1) {
		t.Fatalf("stash should contain v1")
	}
	if err := c.StashExclude(stash, v1); err != nil {
		t.Fatalf("stash_exclude: %v", err)
	}
	if c.StashHasVirtual(stash, v1) {
		t.Fatalf("stash should no longer contain v1 after exclude")
	}
	if err := c.StashSetLivenessIndex(stash, 7); err != nil {
		t.Fatalf("set liveness index: %v", err)
	}
	if idx, ok := c.StashLivenessIndex(stash); !ok || idx != 7 {
		t.Fatalf("stash liveness index = (%d, %v), want (7, true)", idx, ok)
	}

	asm := c.InlineAsmNew()
	if err := c.InlineAsmAddText(asm, "mov "); err != nil {
		t.Fatalf("add text: %v", err)
	}
	if err := c.InlineAsmAddValue(asm, VirtReg(v1, Width64)); err != nil {
		t.Fatalf("add value: %v", err)
	}
	frags, err := c.InlineAsmFragments(asm)
	if err != nil {
		t.Fatalf("fragments: %v", err)
	}
	if len(frags) != 2 || frags[0].Kind != FragmentText || frags[1].Kind != FragmentValue {
		t.Fatalf("fragments = %+v", frags)
	}
}

func TestAnnotateSourceAndSourceOf(t *testing.T) {
	c := NewContext()
	i1, _ := c.InstrInsertAfter(NoneIndex, "mov", ImmInt(1))
	i2, _ := c.InstrInsertAfter(i1, "add", ImmInt(2))
	i3, _ := c.InstrInsertAfter(i2, "ret")

	if err := c.AnnotateSource(i1, i3, debug.Location{File: "f.c", Line: 5}); err != nil {
		t.Fatalf("annotate_source: %v", err)
	}

	if loc, ok := c.SourceOf(i1); !ok || loc.File != "f.c" || loc.Line != 5 {
		t.Fatalf("source_of(i1) = %+v, ok=%v", loc, ok)
	}
	if loc, ok := c.SourceOf(i2); !ok || loc.Line != 5 {
		t.Fatalf("source_of(i2) = %+v, ok=%v", loc, ok)
	}
	if _, ok := c.SourceOf(i3); ok {
		t.Fatalf("i3 is outside the half-open annotated range [i1,i3), expected no source location")
	}
}
