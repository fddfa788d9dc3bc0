package asmcmp

import "testing"

// Binding a label to I_a, then creating I_b and calling move_labels(I_a,
// I_b), rebinds the label to I_b and leaves I_a with none.
func TestMoveLabelsRebindsToNewInstruction(t *testing.T) {
	c := NewContext()
	ia, _ := c.InstrInsertAfter(NoneIndex, "nop")

	label, err := c.NewLabel(NoneIndex)
	if err != nil {
		t.Fatalf("new_label: %v", err)
	}
	if err := c.BindLabel(label, ia); err != nil {
		t.Fatalf("bind_label: %v", err)
	}

	ib, _ := c.InstrInsertAfter(ia, "mov")

	if err := c.MoveLabels(ia, ib); err != nil {
		t.Fatalf("move_labels: %v", err)
	}

	pos, err := c.LabelAt(label)
	if err != nil {
		t.Fatalf("label_at after move: %v", err)
	}
	if pos != ib {
		t.Fatalf("label_at(label) = %d, want instr_index(I_b) = %d", pos, ib)
	}
	if head, ok := c.LabelHead(ia); ok {
		t.Fatalf("label_head(I_a) should be empty after move, got %d", head)
	}
	if head, ok := c.LabelHead(ib); !ok || head != label {
		t.Fatalf("label_head(I_b) = (%d, %v), want (%d, true)", head, ok, label)
	}
}

func TestMoveLabelsRebindsMultipleSiblings(t *testing.T) {
	c := NewContext()
	ia, _ := c.InstrInsertAfter(NoneIndex, "nop")
	ib, _ := c.InstrInsertAfter(ia, "mov")

	l1, _ := c.NewLabel(ia)
	l2, _ := c.NewLabel(ia)

	if err := c.MoveLabels(ia, ib); err != nil {
		t.Fatalf("move_labels: %v", err)
	}

	seen := map[LabelID]bool{}
	for id, ok := c.LabelHead(ib); ok; id, ok = c.LabelNext(id) {
		seen[id] = true
	}
	if !seen[l1] || !seen[l2] {
		t.Fatalf("expected both l1 and l2 bound to I_b, got %v", seen)
	}
	if _, ok := c.LabelHead(ia); ok {
		t.Fatalf("I_a should have no bound labels left")
	}
}

func TestBindAfterTailAndPublicName(t *testing.T) {
	c := NewContext()
	c.InstrInsertAfter(NoneIndex, "nop")

	label, _ := c.NewLabel(NoneIndex)
	if err := c.BindAfterTail(label); err != nil {
		t.Fatalf("bind_after_tail: %v", err)
	}
	if err := c.LabelAddPublicName(label, "main_exit"); err != nil {
		t.Fatalf("label_add_public_name: %v", err)
	}
	if _, ok := c.strings.Lookup("main_exit"); !ok {
		t.Fatalf("public name should be interned in the context string pool")
	}
	l, _ := c.Label(label)
	if !l.PublicNames["main_exit"] {
		t.Fatalf("label should record public name main_exit")
	}
	if err := c.LabelMarkExternalDependencies(label); err != nil {
		t.Fatalf("mark external dependencies: %v", err)
	}
	if !l.HasExternalDependencies {
		t.Fatalf("label should be flagged as externally depended on")
	}
}

func TestReplaceLabelsRewritesOperands(t *testing.T) {
	c := NewContext()
	target, _ := c.NewLabel(NoneIndex)
	replacement, _ := c.NewLabel(NoneIndex)

	jmp, _ := c.InstrInsertAfter(NoneIndex, "jmp", Value{Kind: OperandInternalLabel, InternalLabel: target})

	c.ReplaceLabels(target, replacement)

	instr, _ := c.Instr(jmp)
	if instr.Args[0].InternalLabel != replacement {
		t.Fatalf("jmp operand = %d, want %d", instr.Args[0].InternalLabel, replacement)
	}
}
