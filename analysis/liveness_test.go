package analysis

import (
	"testing"

	"github.com/kefir-lang/kefirgo/ir"
)

func TestLivenessDiamondPhiOperands(t *testing.T) {
	c, b, v := buildDiamond(t)
	s, err := Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	l := BuildLiveness(c, s)

	aliveOutB1 := l.AliveOut(b["b1"])
	if !aliveOutB1[v["v1"]] {
		t.Fatalf("v1 should be alive out of b1 (consumed by the phi in b3 along the b1 edge)")
	}
	aliveOutB2 := l.AliveOut(b["b2"])
	if !aliveOutB2[v["v2"]] {
		t.Fatalf("v2 should be alive out of b2 (consumed by the phi in b3 along the b2 edge)")
	}

	if !l.InstructionIsAlive(v["v1"]) {
		t.Fatalf("v1 is read by the phi and must be considered alive")
	}
}

func TestInstructionIsAliveDeadPureValue(t *testing.T) {
	c, b, _ := buildDiamond(t)
	dead, err := c.AppendInstr(b["b1"], ir.OpIntConst, ir.Operand{Imm: ir.Imm{Kind: ir.ImmInt}}, false)
	if err != nil {
		t.Fatalf("append dead const: %v", err)
	}

	s, err := Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	l := BuildLiveness(c, s)

	if l.InstructionIsAlive(dead) {
		t.Fatalf("a pure instruction with no uses must not be alive")
	}
}
