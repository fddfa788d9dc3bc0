package ir

import llirtypes "github.com/llir/llvm/ir/types"

// Builder is the external front-end-facing boundary contract:
// everything an AST-to-IR lowering pass needs from a Module, expressed
// as an interface so it can be faked in tests without importing the
// concrete Module type.
type Builder interface {
	NewIdentifier(symbol string, kind IdentifierKind, scope Scope, visibility Visibility, alias string) (*Identifier, error)
	NewType(typ llirtypes.Type) TypeID
	NewDataDeclaration(symbol string, typ TypeRef, init []DataInitEntry) (*DataDeclaration, error)
	NewStringLiteral(element StringElementKind, raw string, length int) *StringLiteral
	NewDeclaration(identifier string, paramTypes []TypeRef, returnType TypeRef, variadic bool) FunctionID
	NewFunction(name string, decl FunctionID) (*Function, error)
}

var _ Builder = (*Module)(nil)
