package ir

import "github.com/kefir-lang/kefirgo/debug"

// Function owns a CodeContainer and the per-function debug info that
// sits alongside it: a subprogram id, source-location range, and an
// instruction-indexed source map.
type Function struct {
	ID           FunctionID
	Name         string
	Declaration  FunctionID
	Code         *CodeContainer
	DebugInfo    *debug.FunctionDebugInfo
}

func newFunction(id FunctionID, name string, decl FunctionID) *Function {
	return &Function{
		ID:          id,
		Name:        name,
		Declaration: decl,
		Code:        NewCodeContainer(),
		DebugInfo:   debug.NewFunctionDebugInfo(),
	}
}
