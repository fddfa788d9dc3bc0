package debug

import "testing"

func TestSourceMapAnnotateAndAt(t *testing.T) {
	m := NewSourceMap()

	if err := m.Annotate(0, 3, Location{File: "a.c", Line: 10}); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if err := m.Annotate(3, 6, Location{File: "a.c", Line: 11}); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	loc, ok := m.At(1)
	if !ok || loc.Line != 10 {
		t.Fatalf("at(1) = %+v, ok=%v, want line=10", loc, ok)
	}

	loc, ok = m.At(4)
	if !ok || loc.Line != 11 {
		t.Fatalf("at(4) = %+v, ok=%v, want line=11", loc, ok)
	}

	if _, ok := m.At(100); ok {
		t.Fatalf("expected no location covering an un-annotated index")
	}
}
