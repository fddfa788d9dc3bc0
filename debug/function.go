package debug

// FunctionDebugInfo is one function's debug info: a subprogram id into
// the module debug-entry tree, a source-location range, and an
// instruction-indexed source map.
type FunctionDebugInfo struct {
	Subprogram EntryID
	Range      Location
	SourceMap  *SourceMap

	// locations is the per-instruction debug source location singly
	// linked list: each node for an instruction index links back to the
	// location previously set for that same index.
	locations map[int64]*locationNode
}

type locationNode struct {
	loc  Location
	prev *locationNode
}

// NewFunctionDebugInfo creates an empty per-function debug info block.
func NewFunctionDebugInfo() *FunctionDebugInfo {
	return &FunctionDebugInfo{
		Subprogram: EntryID(NoneID),
		SourceMap:  NewSourceMap(),
		locations:  make(map[int64]*locationNode),
	}
}

// SetLocation attaches loc to a single instruction index, chaining it
// off the previous node recorded for that index if one exists.
func (f *FunctionDebugInfo) SetLocation(index int64, loc Location) {
	f.locations[index] = &locationNode{loc: loc, prev: f.locations[index]}
}

// LocationAt returns the most recently set location for index.
func (f *FunctionDebugInfo) LocationAt(index int64) (Location, bool) {
	n, ok := f.locations[index]
	if !ok {
		return Location{}, false
	}
	return n.loc, true
}
