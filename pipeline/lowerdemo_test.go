package pipeline

import (
	"testing"

	"github.com/kefir-lang/kefirgo/asmcmp"
	"github.com/kefir-lang/kefirgo/debug"
	"github.com/kefir-lang/kefirgo/ir"
)

func TestLowerDemoAddFunction(t *testing.T) {
	code := buildAddFunction()

	demo := NewLowerDemo(code, "add_function")
	ctx, err := demo.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var mnemonics []string
	for idx := ctx.Head(); idx != asmcmp.NoneIndex; {
		instr, ok := ctx.Instr(idx)
		if !ok {
			break
		}
		mnemonics = append(mnemonics, instr.Opcode)
		next, more := ctx.Next(idx)
		if !more {
			break
		}
		idx = next
	}

	want := []string{"block_marker", "mov", "mov", "add", "ret"}
	if len(mnemonics) != len(want) {
		t.Fatalf("mnemonics = %v, want %v", mnemonics, want)
	}
	for i := range want {
		if mnemonics[i] != want[i] {
			t.Fatalf("mnemonics[%d] = %q, want %q (full: %v)", i, mnemonics[i], want[i], mnemonics)
		}
	}

	name, ok := demo.Debug.GetAttribute(demo.Subprog, debug.AttrName)
	if !ok || name.Str != "add_function" {
		t.Fatalf("subprogram name attribute = %+v, ok=%v", name, ok)
	}
	if !demo.Debug.HasAttribute(demo.Subprog, debug.AttrCodeBegin) || !demo.Debug.HasAttribute(demo.Subprog, debug.AttrCodeEnd) {
		t.Fatalf("expected subprogram entry to carry code_begin/code_end attributes")
	}

	// Re-adding AttrName must replace, not duplicate, the attribute.
	if err := demo.Debug.AddAttribute(demo.Subprog, debug.AttrName, debug.Attribute{Str: "renamed"}); err != nil {
		t.Fatalf("add_attribute: %v", err)
	}
	if got, _ := demo.Debug.GetAttribute(demo.Subprog, debug.AttrName); got.Str != "renamed" {
		t.Fatalf("attribute replace = %+v, want Str=renamed", got)
	}

	if loc, ok := ctx.SourceOf(ctx.Head()); !ok || loc.File != "add_function" {
		t.Fatalf("source_of(head) = %+v, ok=%v, want file=add_function", loc, ok)
	}
}

func TestLowerDemoBranchUsesBlockLabels(t *testing.T) {
	code := ir.NewCodeContainer()
	b0 := code.NewBlock()
	b1 := code.NewBlock()
	b2 := code.NewBlock()
	code.EntryPoint = b0

	cond, _ := code.AppendInstr(b0, ir.OpIntConst, constOperand(1), false)
	code.AppendInstr(b0, ir.OpBranch, ir.Operand{Branch: ir.BranchOperand{Target: b1, Alt: b2, Condition: cond}}, false)

	v1, _ := code.AppendInstr(b1, ir.OpIntConst, constOperand(1), false)
	code.AppendInstr(b1, ir.OpReturn, refsOperand(v1), false)

	v2, _ := code.AppendInstr(b2, ir.OpIntConst, constOperand(2), false)
	code.AppendInstr(b2, ir.OpReturn, refsOperand(v2), false)

	ctx, err := NewLowerDemo(code, "branch_function").Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	found := false
	for idx := ctx.Head(); idx != asmcmp.NoneIndex; {
		instr, ok := ctx.Instr(idx)
		if !ok {
			break
		}
		if instr.Opcode == "jnz" {
			found = true
			break
		}
		next, more := ctx.Next(idx)
		if !more {
			break
		}
		idx = next
	}
	if !found {
		t.Fatalf("expected a jnz instruction lowering the branch")
	}
}

func TestLowerDemoRecordsParameterEntries(t *testing.T) {
	code := ir.NewCodeContainer()
	b0 := code.NewBlock()
	code.EntryPoint = b0

	arg0, _ := code.AppendInstr(b0, ir.OpGetArgument, ir.Operand{Imm: ir.Imm{ArgIndex: 0}}, false)
	arg1, _ := code.AppendInstr(b0, ir.OpGetArgument, ir.Operand{Imm: ir.Imm{ArgIndex: 1}}, false)
	code.AppendInstr(b0, ir.OpReturn, refsOperand(arg0, arg1), false)

	demo := NewLowerDemo(code, "two_args")
	if _, err := demo.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	children := demo.Debug.Children(demo.Subprog)
	if len(children) != 2 {
		t.Fatalf("children(subprog) = %v, want 2 parameter entries", children)
	}
	for i, child := range children {
		e, err := demo.Debug.Entry(child)
		if err != nil {
			t.Fatalf("entry %d: %v", child, err)
		}
		if e.Kind != debug.EntryParameter {
			t.Fatalf("child %d kind = %v, want EntryParameter", i, e.Kind)
		}
		attr, ok := demo.Debug.GetAttribute(child, debug.AttrParameter)
		if !ok || attr.Int != int64(i) {
			t.Fatalf("child %d parameter attribute = %+v, ok=%v, want Int=%d", i, attr, ok, i)
		}
	}
}
