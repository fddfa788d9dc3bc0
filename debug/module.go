package debug

import (
	llirmetadata "github.com/llir/llvm/ir/metadata"

	"github.com/kefir-lang/kefirgo/container"
	"github.com/kefir-lang/kefirgo/errkind"
)

// NoneID is the debug-entry tree's reserved sentinel.
const NoneID = ^uint32(0)

// EntryID indexes the module-wide debug-entry tree.
type EntryID uint32

// EntryKind tags the variant of a debug entry: types, subprograms,
// variables, lexical blocks, parameters and enumerators.
type EntryKind int

const (
	EntryType EntryKind = iota
	EntrySubprogram
	EntryVariable
	EntryLexicalBlock
	EntryParameter
	EntryEnumerator
)

// AttributeTag names one attribute slot of a debug entry. A given entry
// holds at most one attribute per tag: adding an attribute with a tag
// already present replaces it.
type AttributeTag int

const (
	AttrName AttributeTag = iota
	AttrSize
	AttrAlignment
	AttrLength
	AttrConstantUint
	AttrOffset
	AttrBitwidth
	AttrBitoffset
	AttrType
	AttrFunctionPrototyped
	AttrCodeBegin
	AttrCodeEnd
	AttrLocalVariable
	AttrGlobalVariable
	AttrThreadLocalVariable
	AttrParameter
	AttrExternal
	AttrDeclaration
	AttrSourceLocation
	AttrSourceLocationLine
	AttrSourceLocationColumn
)

// LocalVariableRef names a local variable's type and its index within
// the enclosing function's local variable table.
type LocalVariableRef struct {
	TypeID EntryID
	Index  int
}

// Attribute is the tagged payload attached to a debug entry under one
// AttributeTag. Exactly one field is meaningful, selected by the tag
// under which the attribute was stored.
type Attribute struct {
	Str      string           // Name, GlobalVariable, SourceLocation
	Int      int64            // Size, Length, ConstantUint, Offset, Bitwidth, Bitoffset, CodeBegin, CodeEnd, SourceLocationLine, SourceLocationColumn, Parameter
	Bool     bool             // FunctionPrototyped, ThreadLocalVariable, External, Declaration
	EntryRef EntryID          // Type
	Local    LocalVariableRef // LocalVariable
	Node     llirmetadata.Definition
}

// Entry is one node of the module debug-entry tree: a parent, a tag
// (Kind), an ordered attribute map (tag -> payload), and an ordered
// child list. Node holds the concrete llir/llvm debug-info metadata
// value matching Kind (*metadata.DIBasicType for EntryType,
// *metadata.DISubprogram for EntrySubprogram, *metadata.DILocalVariable
// for EntryVariable/EntryParameter, *metadata.DILexicalBlock for
// EntryLexicalBlock, *metadata.DIEnumerator for EntryEnumerator) for
// entries that carry one, reusing llir/llvm's metadata node shapes
// instead of re-deriving a DWARF-like schema for the node itself; tag-
// keyed scalar attributes (name, size, offset, source location, ...)
// live in Attributes instead, since llir's metadata nodes have no
// notion of a replaceable tag-to-payload slot.
type Entry struct {
	ID         EntryID
	Parent     EntryID
	Kind       EntryKind
	Name       string
	Node       llirmetadata.Definition
	Attributes *container.OrderedMap[AttributeTag, Attribute]
	children   []EntryID
}

// ModuleDebugInfo is the module-wide debug-entry tree, parented from
// the module's compilation unit down through subprograms and variables.
type ModuleDebugInfo struct {
	entries []*Entry
}

// NewModuleDebugInfo creates an empty debug-entry tree.
func NewModuleDebugInfo() *ModuleDebugInfo {
	return &ModuleDebugInfo{}
}

// NewEntry allocates a debug entry under parent (NoneID for a root
// entry), wrapping node, and appends it to parent's ordered child list.
func (m *ModuleDebugInfo) NewEntry(parent EntryID, kind EntryKind, name string, node llirmetadata.Definition) EntryID {
	id := EntryID(len(m.entries))
	m.entries = append(m.entries, &Entry{
		ID:         id,
		Parent:     parent,
		Kind:       kind,
		Name:       name,
		Node:       node,
		Attributes: container.NewOrderedMap[AttributeTag, Attribute](),
	})
	if parent != EntryID(NoneID) {
		if p, err := m.Entry(parent); err == nil {
			p.children = append(p.children, id)
		}
	}
	return id
}

// Entry looks up a debug entry by id.
func (m *ModuleDebugInfo) Entry(id EntryID) (*Entry, error) {
	if int(id) < 0 || int(id) >= len(m.entries) {
		return nil, errkind.Wrap(errkind.NotFound, "debug entry %d not found", id)
	}
	return m.entries[id], nil
}

// Children returns the ids of every entry directly parented by id, in
// the order they were added.
func (m *ModuleDebugInfo) Children(id EntryID) []EntryID {
	e, err := m.Entry(id)
	if err != nil {
		return nil
	}
	return append([]EntryID(nil), e.children...)
}

// AddAttribute records attr under tag on the entry identified by id,
// replacing any attribute already stored under that tag.
func (m *ModuleDebugInfo) AddAttribute(id EntryID, tag AttributeTag, attr Attribute) error {
	e, err := m.Entry(id)
	if err != nil {
		return err
	}
	e.Attributes.Insert(tag, attr)
	return nil
}

// GetAttribute returns the attribute stored under tag on entry id, if
// any.
func (m *ModuleDebugInfo) GetAttribute(id EntryID, tag AttributeTag) (Attribute, bool) {
	e, err := m.Entry(id)
	if err != nil {
		return Attribute{}, false
	}
	return e.Attributes.Get(tag)
}

// HasAttribute reports whether entry id carries an attribute under tag.
func (m *ModuleDebugInfo) HasAttribute(id EntryID, tag AttributeTag) bool {
	_, ok := m.GetAttribute(id, tag)
	return ok
}
