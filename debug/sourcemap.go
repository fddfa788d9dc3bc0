// Package debug implements IR-to-source and asmcmp-to-source mapping:
// interval-tree-backed source maps plus the module-wide debug-entry
// tree (types, subprograms, variables, lexical blocks, parameters,
// enumerators), wired to llir/llvm's debug-info metadata node shapes.
package debug

import "github.com/kefir-lang/kefirgo/container"

// Location is a single source position attached to an instruction or
// asmcmp node.
type Location struct {
	File   string
	Line   int
	Column int
}

// SourceMap is an instruction/asmcmp-index-keyed interval tree mapping
// a contiguous run of indices to one source location.
type SourceMap struct {
	tree *container.IntervalTree[Location]
}

// NewSourceMap creates an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{tree: container.NewIntervalTree[Location]()}
}

// Annotate records that indices [begin,end) map to loc.
func (m *SourceMap) Annotate(begin, end int64, loc Location) error {
	return m.tree.Insert(container.IntervalKey(begin), container.IntervalKey(end), loc)
}

// At returns the location covering index, if any.
func (m *SourceMap) At(index int64) (Location, bool) {
	_, node, err := m.tree.Find(container.IntervalKey(index))
	if err != nil {
		return Location{}, false
	}
	return node.Value, true
}
