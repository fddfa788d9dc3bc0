// Package pipeline wires the optimizer's analyses, scheduler and
// register allocator together into named passes that run in sequence
// over one function's code.
package pipeline

import (
	"github.com/kefir-lang/kefirgo/analysis"
	"github.com/kefir-lang/kefirgo/ir"
)

// Pass is one optimizer or lowering stage. Run receives a fresh
// structure/liveness pair computed over code immediately before the
// call, so a pass never sees stale analysis results from before a
// sibling pass mutated the container.
type Pass interface {
	Name() string
	Run(code *ir.CodeContainer, structure *analysis.CodeStructure, liveness *analysis.CodeLiveness) error
}

// Registry runs a fixed, ordered list of passes over a function,
// recomputing structure and liveness before each one.
type Registry struct {
	passes []Pass
}

// NewRegistry creates an empty pass pipeline.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends p to the end of the pipeline.
func (r *Registry) Register(p Pass) {
	r.passes = append(r.passes, p)
}

// Passes returns the registered passes in run order.
func (r *Registry) Passes() []Pass {
	return r.passes
}

// RunAll runs every registered pass over code in order.
func (r *Registry) RunAll(code *ir.CodeContainer) error {
	for _, p := range r.passes {
		structure, err := analysis.Build(code)
		if err != nil {
			return err
		}
		liveness := analysis.BuildLiveness(code, structure)
		if err := p.Run(code, structure, liveness); err != nil {
			return err
		}
	}
	return nil
}
