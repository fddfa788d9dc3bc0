package ir

import (
	"testing"

	llirtypes "github.com/llir/llvm/ir/types"

	"github.com/kefir-lang/kefirgo/container"
)

func newTestModule() *Module {
	return NewModule(container.NewArena())
}

func TestNewIdentifierUniqueness(t *testing.T) {
	m := newTestModule()
	if _, err := m.NewIdentifier("main", IdentFunction, ScopeExport, VisibilityDefault, ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := m.NewIdentifier("main", IdentFunction, ScopeExport, VisibilityDefault, ""); err == nil {
		t.Fatalf("expected duplicate identifier registration to fail")
	}
}

func TestFunctionDeclarationHasExactlyOneBody(t *testing.T) {
	m := newTestModule()
	decl := m.NewDeclaration("f", nil, TypeRef{}, false)
	if _, err := m.NewFunction("f", decl); err != nil {
		t.Fatalf("first definition: %v", err)
	}
	if _, err := m.NewFunction("f", decl); err == nil {
		t.Fatalf("expected a second definition of the same declaration to fail")
	}
}

func TestStringLiteralInterningRoundTrip(t *testing.T) {
	m := newTestModule()
	lit := m.NewStringLiteral(StringUTF8, "hello", 5)
	got, ok := m.StringLiteral(lit.ID)
	if !ok || got.Content != StringUTF8 || got.Length != 5 {
		t.Fatalf("string literal round trip = (%+v, %v)", got, ok)
	}
	if m.strings.String(lit.ID) != "hello" {
		t.Fatalf("interned content = %q, want hello", m.strings.String(lit.ID))
	}
}

func TestDataDeclarationRequiresDataIdentifier(t *testing.T) {
	m := newTestModule()
	if _, err := m.NewIdentifier("g", IdentGlobalData, ScopeLocal, VisibilityDefault, ""); err != nil {
		t.Fatalf("register identifier: %v", err)
	}
	typ := TypeRef{Type: m.NewType(llirtypes.I32)}
	if _, err := m.NewDataDeclaration("g", typ, []DataInitEntry{{Kind: DataInitInt, Int: 42}}); err != nil {
		t.Fatalf("new_data_declaration: %v", err)
	}

	if _, err := m.NewIdentifier("fn", IdentFunction, ScopeLocal, VisibilityDefault, ""); err != nil {
		t.Fatalf("register function identifier: %v", err)
	}
	if _, err := m.NewDataDeclaration("fn", typ, nil); err == nil {
		t.Fatalf("expected data declaration over a function identifier to fail")
	}
}
