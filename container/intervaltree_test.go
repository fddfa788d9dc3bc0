package container

import (
	"testing"

	"github.com/kr/pretty"
)

// Interval tree lookups against overlapping, nested intervals.
func TestIntervalTreeFindOverlappingIntervals(t *testing.T) {
	tree := NewIntervalTree[string]()
	must := func(err error) {
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	must(tree.Insert(1, 5, "a"))
	must(tree.Insert(2, 3, "b"))
	must(tree.Insert(4, 9, "c"))
	must(tree.Insert(6, 7, "d"))

	finder, node, err := tree.Find(6)
	if err != nil {
		t.Fatalf("find(6): %v", err)
	}
	if node.Value != "c" {
		t.Fatalf("find(6) = %q, want %q\n%s", node.Value, "c", pretty.Sprint(node))
	}

	// d = [6,7) also contains position 6, so the next match is d...
	next, err := tree.FindNext(finder)
	if err != nil {
		t.Fatalf("find_next after c: %v", err)
	}
	if next.Value != "d" {
		t.Fatalf("find_next = %q, want %q", next.Value, "d")
	}
	// ...and exhausting the search from there yields iterator-end.
	if _, err := tree.FindNext(finder); err == nil {
		t.Fatalf("expected find_next to report iterator-end once exhausted")
	}
}

func TestIntervalTreeRoundTrip(t *testing.T) {
	tree := NewIntervalTree[int]()
	if err := tree.Insert(0, 10, 42); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tree.RemoveRange(0, 10); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := tree.Find(5); err == nil {
		t.Fatalf("expected find to fail on empty tree")
	}
	if err := tree.Insert(0, 10, 7); err != nil {
		t.Fatalf("re-insert after round trip: %v", err)
	}
	_, node, err := tree.Find(5)
	if err != nil {
		t.Fatalf("find after re-insert: %v", err)
	}
	if node.Value != 7 {
		t.Fatalf("value = %d, want 7", node.Value)
	}
}

func TestIntervalTreePointInterval(t *testing.T) {
	tree := NewIntervalTree[string]()
	if err := tree.Insert(3, 3, "point"); err != nil {
		t.Fatalf("insert point interval: %v", err)
	}
	_, node, err := tree.Find(3)
	if err != nil {
		t.Fatalf("find(3): %v", err)
	}
	if node.Value != "point" {
		t.Fatalf("value = %q, want point", node.Value)
	}
}
