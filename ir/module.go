package ir

import (
	llirtypes "github.com/llir/llvm/ir/types"

	"github.com/kefir-lang/kefirgo/container"
	"github.com/kefir-lang/kefirgo/debug"
	"github.com/kefir-lang/kefirgo/errkind"
)

// IdentifierKind classifies a module-level named identifier.
type IdentifierKind int

const (
	IdentFunction IdentifierKind = iota
	IdentGlobalData
	IdentThreadLocalData
)

// Scope is a named identifier's linkage scope.
type Scope int

const (
	ScopeExport Scope = iota
	ScopeExportWeak
	ScopeImport
	ScopeLocal
)

// Visibility is a named identifier's symbol visibility.
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityHidden
	VisibilityInternal
	VisibilityProtected
)

// Identifier is one named, module-level symbol.
type Identifier struct {
	Symbol     string
	Kind       IdentifierKind
	Scope      Scope
	Visibility Visibility
	Alias      string // empty when the identifier is not an alias
}

// DataInitEntryKind tags the payload of one DataDeclaration initializer
// entry: a scalar constant, a pointer to another identifier, a string
// reference, a nested aggregate, or an explicitly undefined slot.
type DataInitEntryKind int

const (
	DataInitInt DataInitEntryKind = iota
	DataInitFloat
	DataInitPointer
	DataInitStringRef
	DataInitAggregate
	DataInitUndefined
)

// DataInitEntry is one initializer entry of a DataDeclaration.
type DataInitEntry struct {
	Kind      DataInitEntryKind
	Int       int64
	Float     float64
	Pointer   string // identifier symbol the pointer refers to
	StringRef container.StringID
	Aggregate []DataInitEntry
}

// DataDeclaration is a named data object with a typed initializer list.
type DataDeclaration struct {
	Symbol string
	Type   TypeRef
	Init   []DataInitEntry
}

// StringLiteral is a module-owned, typed string literal: a content id
// into the module's string pool plus its element length.
type StringLiteral struct {
	Content StringElementKind
	ID      container.StringID
	Length  int
}

// StringElementKind mirrors token.StringElementKind without importing
// the front-end-facing token package from the core.
type StringElementKind int

const (
	StringMultibyte StringElementKind = iota
	StringUTF8
	StringUTF16
	StringUTF32
	StringWide
)

// Declaration is a function declaration: its signature id and linked
// module identifier.
type Declaration struct {
	ID         FunctionID
	Identifier string
	ParamTypes []TypeRef
	ReturnType TypeRef
	Variadic   bool
}

// Module is the top-level compilation unit: named identifiers, a type
// table, data objects, string literals, function declarations,
// functions, and a module-wide debug-entry tree.
type Module struct {
	arena *container.Arena

	identifiers map[string]*Identifier

	types moduleTypeTable

	dataDecls map[string]*DataDeclaration

	strings         *container.StringPool
	stringLiterals  map[container.StringID]*StringLiteral

	declarations map[FunctionID]*Declaration
	nextDeclID   uint32

	functions  map[FunctionID]*Function
	nextFuncID uint32

	Debug *debug.ModuleDebugInfo
}

// NewModule creates an empty module bound to arena.
func NewModule(arena *container.Arena) *Module {
	m := &Module{
		arena:          arena,
		identifiers:    make(map[string]*Identifier),
		dataDecls:      make(map[string]*DataDeclaration),
		strings:        container.NewStringPool(),
		stringLiterals: make(map[container.StringID]*StringLiteral),
		declarations:   make(map[FunctionID]*Declaration),
		functions:      make(map[FunctionID]*Function),
		Debug:          debug.NewModuleDebugInfo(),
	}
	arena.OnRelease(func() {
		m.functions = nil
		m.declarations = nil
	})
	return m
}

// NewIdentifier registers a named identifier. Fails with
// errkind.AlreadyExists if the symbol is already registered.
func (m *Module) NewIdentifier(symbol string, kind IdentifierKind, scope Scope, visibility Visibility, alias string) (*Identifier, error) {
	if _, exists := m.identifiers[symbol]; exists {
		return nil, errkind.Wrap(errkind.AlreadyExists, "identifier %q already registered", symbol)
	}
	id := &Identifier{Symbol: symbol, Kind: kind, Scope: scope, Visibility: visibility, Alias: alias}
	m.identifiers[symbol] = id
	return id, nil
}

// Identifier looks up a registered identifier by symbol.
func (m *Module) Identifier(symbol string) (*Identifier, bool) {
	id, ok := m.identifiers[symbol]
	return id, ok
}

// NewType registers a type in the module's dense type table, backed by
// llir/llvm's type representation.
func (m *Module) NewType(typ llirtypes.Type) TypeID {
	return m.types.add(typ)
}

// Type looks up a registered type by id.
func (m *Module) Type(id TypeID) (llirtypes.Type, bool) {
	return m.types.get(id)
}

// NewDataDeclaration registers a named data object. The identifier must
// already be registered as global or thread-local data.
func (m *Module) NewDataDeclaration(symbol string, typ TypeRef, init []DataInitEntry) (*DataDeclaration, error) {
	id, ok := m.identifiers[symbol]
	if !ok {
		return nil, errkind.Wrap(errkind.NotFound, "identifier %q not registered", symbol)
	}
	if id.Kind != IdentGlobalData && id.Kind != IdentThreadLocalData {
		return nil, errkind.Wrap(errkind.InvalidRequest, "identifier %q is not a data identifier", symbol)
	}
	if _, exists := m.dataDecls[symbol]; exists {
		return nil, errkind.Wrap(errkind.AlreadyExists, "data declaration %q already registered", symbol)
	}
	decl := &DataDeclaration{Symbol: symbol, Type: typ, Init: init}
	m.dataDecls[symbol] = decl
	return decl, nil
}

// DataDeclaration looks up a data declaration by symbol.
func (m *Module) DataDeclaration(symbol string) (*DataDeclaration, bool) {
	decl, ok := m.dataDecls[symbol]
	return decl, ok
}

// NewStringLiteral interns raw into the module string pool and registers
// a typed string literal entry for it.
func (m *Module) NewStringLiteral(element StringElementKind, raw string, length int) *StringLiteral {
	id := m.strings.Intern(raw)
	lit := &StringLiteral{Content: element, ID: id, Length: length}
	m.stringLiterals[id] = lit
	return lit
}

// StringLiteral looks up a string literal by its string pool id.
func (m *Module) StringLiteral(id container.StringID) (*StringLiteral, bool) {
	lit, ok := m.stringLiterals[id]
	return lit, ok
}

// NewDeclaration registers a function declaration and returns its id.
func (m *Module) NewDeclaration(identifier string, paramTypes []TypeRef, returnType TypeRef, variadic bool) FunctionID {
	id := FunctionID(m.nextDeclID)
	m.nextDeclID++
	m.declarations[id] = &Declaration{ID: id, Identifier: identifier, ParamTypes: paramTypes, ReturnType: returnType, Variadic: variadic}
	return id
}

// Declaration looks up a function declaration by id.
func (m *Module) Declaration(id FunctionID) (*Declaration, bool) {
	decl, ok := m.declarations[id]
	return decl, ok
}

// NewFunction creates a function bound to an existing declaration. Fails
// with errkind.InvalidRequest if the function id already has a defining
// body, enforcing "a function id has exactly one declaration."
func (m *Module) NewFunction(name string, decl FunctionID) (*Function, error) {
	if _, ok := m.declarations[decl]; !ok {
		return nil, errkind.Wrap(errkind.NotFound, "function declaration %d not found", decl)
	}
	if _, exists := m.functions[decl]; exists {
		return nil, errkind.Wrap(errkind.InvalidRequest, "function declaration %d already has a body", decl)
	}
	id := FunctionID(m.nextFuncID)
	m.nextFuncID++
	fn := newFunction(id, name, decl)
	m.functions[decl] = fn
	return fn, nil
}

// Function looks up a defined function by its declaration id.
func (m *Module) Function(decl FunctionID) (*Function, bool) {
	fn, ok := m.functions[decl]
	return fn, ok
}

// Functions returns every defined function, unordered.
func (m *Module) Functions() []*Function {
	out := make([]*Function, 0, len(m.functions))
	for _, fn := range m.functions {
		out = append(out, fn)
	}
	return out
}

// Close releases the module's arena.
func (m *Module) Close() {
	m.arena.Release()
}
